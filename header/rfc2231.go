package header

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/mailchannels/gomime/charset"
)

// ParamIssue records one duplicated or conflicting parameter occurrence
// found while parsing a parameter list. Conflict is true when a repeated
// parameter carried a different value than the first occurrence (which
// always wins).
type ParamIssue struct {
	Name     string
	Conflict bool
}

// ParseParams parses the parameter list that follows a Content-Type or
// Content-Disposition value (everything after the first ';'), applying
// RFC 2231 continuation ("name*0", "name*1", ...) and extended-value
// ("name*=charset'lang'pct-encoded") reassembly.
func ParseParams(s string) map[string]string {
	params, _ := ParseParamsReport(s)
	return params
}

// ParseParamsReport is ParseParams with duplicate/conflict telemetry:
// every repeated simple parameter name produces a ParamIssue, in
// occurrence order, followed by one per repeated continuation segment
// index (grouped by base name; the order across names is not defined).
func ParseParamsReport(s string) (map[string]string, []ParamIssue) {
	raw := splitParams(s)
	var issues []ParamIssue

	type piece struct {
		idx      int
		extended bool
		value    string
	}
	pieces := make(map[string][]piece)
	simple := make(map[string]string)
	extendedBase := make(map[string]bool)

	for _, kv := range raw {
		name, value := kv[0], kv[1]
		star := strings.LastIndexByte(name, '*')
		if star < 0 {
			if prev, dup := simple[name]; dup {
				issues = append(issues, ParamIssue{Name: name, Conflict: prev != unquote(value)})
				continue // first occurrence wins
			}
			simple[name] = unquote(value)
			continue
		}
		base := name[:star]
		rest := name[star+1:]
		if rest == "" {
			// name*=charset'lang'value — single extended value, no
			// continuation.
			extendedBase[base] = true
			pieces[base] = append(pieces[base], piece{idx: 0, extended: true, value: value})
			continue
		}
		// name*N or name*N* (the trailing '*' marks that segment itself
		// as percent-encoded, per RFC 2231 §3).
		isExt := strings.HasSuffix(rest, "*")
		n, err := strconv.Atoi(strings.TrimSuffix(rest, "*"))
		if err != nil {
			continue
		}
		if n == 0 && isExt {
			extendedBase[base] = true
		}
		pieces[base] = append(pieces[base], piece{idx: n, extended: isExt, value: value})
	}

	out := make(map[string]string, len(simple)+len(pieces))
	for k, v := range simple {
		out[k] = v
	}
	for base, ps := range pieces {
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].idx < ps[j].idx })
		var raw strings.Builder
		for i, p := range ps {
			if i > 0 && p.idx == ps[i-1].idx {
				// repeated continuation segment: first wins
				issues = append(issues, ParamIssue{Name: base, Conflict: p.value != ps[i-1].value})
				continue
			}
			raw.WriteString(p.value)
		}
		combined := raw.String()
		if extendedBase[base] || (len(ps) > 0 && ps[0].extended) {
			out[base] = decodeExtendedValue(combined)
		} else {
			out[base] = unquote(combined)
		}
		if _, dup := simple[base]; dup {
			issues = append(issues, ParamIssue{Name: base, Conflict: true})
		}
	}
	return out, issues
}

// splitParams tokenizes "name=value" or "name*N*=value" pairs separated
// by ';', honoring quoted-string values that may themselves contain ';'.
func splitParams(s string) [][2]string {
	var out [][2]string
	i := 0
	n := len(s)
	for i < n {
		for i < n && (s[i] == ' ' || s[i] == '\t' || s[i] == ';') {
			i++
		}
		start := i
		for i < n && s[i] != '=' && s[i] != ';' {
			i++
		}
		name := strings.TrimSpace(s[start:i])
		if name == "" {
			break
		}
		if i >= n || s[i] != '=' {
			i++
			continue
		}
		i++ // consume '='
		var value string
		if i < n && s[i] == '"' {
			i++
			var sb strings.Builder
			for i < n {
				if s[i] == '\\' && i+1 < n {
					sb.WriteByte(s[i+1])
					i += 2
					continue
				}
				if s[i] == '"' {
					i++
					break
				}
				sb.WriteByte(s[i])
				i++
			}
			value = sb.String()
		} else {
			start := i
			for i < n && s[i] != ';' {
				i++
			}
			value = strings.TrimSpace(s[start:i])
		}
		out = append(out, [2]string{name, value})
	}
	return out
}

func unquote(s string) string { return s }

// decodeExtendedValue decodes a reassembled RFC 2231 extended value:
// the first segment carries "charset'language'" and every segment is
// percent-encoded.
func decodeExtendedValue(s string) string {
	parts := strings.SplitN(s, "'", 3)
	var csName, pctValue string
	if len(parts) == 3 {
		csName, pctValue = parts[0], parts[2]
	} else {
		pctValue = s
		csName = "us-ascii"
	}
	decoded, err := url.QueryUnescape(strings.ReplaceAll(pctValue, "+", "%2B"))
	if err != nil {
		decoded = pctValue
	}
	if csName == "" || strings.EqualFold(charset.Alias(csName), "utf-8") || strings.EqualFold(charset.Alias(csName), "us-ascii") {
		return decoded
	}
	if conv, err := charset.Open(csName); err == nil {
		defer conv.Close()
		if out, err := conv.Convert([]byte(decoded)); err == nil {
			return string(out)
		}
	}
	return decoded
}

// EncodeExtendedValue renders value as an RFC 2231 extended parameter
// value ("UTF-8''pct-encoded"), for use when an outgoing parameter name
// or value can't be represented as a plain RFC 2045 token/quoted-string.
func EncodeExtendedValue(value string) string {
	return "UTF-8''" + percentEncodeAttrChar(value)
}

func percentEncodeAttrChar(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b < 0x80 && isAttrCharByte(b) {
			sb.WriteByte(b)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(hexDigit(b >> 4))
		sb.WriteByte(hexDigit(b & 0xf))
	}
	return sb.String()
}

func isAttrCharByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case strings.IndexByte("!#$&+-.^_`|~", b) >= 0:
		return true
	}
	return false
}

func hexDigit(n byte) byte {
	const digits = "0123456789ABCDEF"
	return digits[n&0xf]
}
