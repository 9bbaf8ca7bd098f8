package header

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	netcharset "golang.org/x/net/html/charset"

	"github.com/mailchannels/gomime/charset"
)

// encodedWordRE matches one RFC 2047 "=?charset?encoding?text?=" token.
var encodedWordRE = regexp.MustCompile(`=\?([^?]+)\?([bBqQ])\?([^?]*)\?=`)

// DecodeWords replaces every RFC 2047 encoded word in s with its decoded
// text, joining adjacent encoded words (separated only by folding
// whitespace) without an intervening space per RFC 2047 §6.2 — the
// behavior go-guerrilla's mail.MimeHeaderDecode gets from mime.WordDecoder
// plus golang.org/x/net/html/charset as its CharsetReader. A malformed
// encoded word is left verbatim in the output, matching go-guerrilla's
// documented fallback behavior.
func DecodeWords(s string) string {
	out, _ := DecodeWordsReport(s, false)
	return out
}

// DecodeWordsReport is DecodeWords with the violation channel exposed:
// it additionally returns every malformed encoded word encountered.
// When strict is true, malformed words are dropped from the output (the
// caller is expected to turn the returned list into
// InvalidRFC2047Value warnings); when false they are left verbatim, the
// loose-mode behavior DecodeWords always uses.
func DecodeWordsReport(s string, strict bool) (string, []string) {
	matches := encodedWordRE.FindAllStringIndex(s, -1)
	if matches == nil {
		return s, nil
	}
	var invalid []string
	var out strings.Builder
	prevEnd := 0
	prevWasEncoded := false
	for _, m := range matches {
		start, end := m[0], m[1]
		between := s[prevEnd:start]
		if prevWasEncoded && strings.TrimSpace(between) == "" {
			// RFC 2047 §6.2: elide whitespace solely separating two
			// encoded words.
		} else {
			out.WriteString(between)
		}
		decoded, ok := decodeOneWord(s[start:end])
		if !ok {
			invalid = append(invalid, s[start:end])
			if !strict {
				out.WriteString(s[start:end])
			}
			prevWasEncoded = false
		} else {
			out.WriteString(decoded)
			prevWasEncoded = true
		}
		prevEnd = end
	}
	out.WriteString(s[prevEnd:])
	return out.String(), invalid
}

func decodeOneWord(word string) (string, bool) {
	sub := encodedWordRE.FindStringSubmatch(word)
	if sub == nil {
		return "", false
	}
	cs, enc, text := sub[1], sub[2], sub[3]

	var raw []byte
	switch enc {
	case "b", "B":
		dec := make([]byte, base64.StdEncoding.DecodedLen(len(text)))
		n, err := base64.StdEncoding.Decode(dec, []byte(text))
		if err != nil {
			return "", false
		}
		raw = dec[:n]
	case "q", "Q":
		raw = decodeQWord(text)
	default:
		return "", false
	}

	decoded, err := convertToUTF8(cs, raw)
	if err != nil {
		return "", false
	}
	return decoded, true
}

// decodeQWord decodes RFC 2047 "Q" encoding: '_' means space, "=HH" is a
// hex-escaped byte, everything else passes through.
func decodeQWord(s string) []byte {
	var out bytes.Buffer
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '_':
			out.WriteByte(' ')
		case '=':
			if i+2 < len(s) && isHexDigit(s[i+1]) && isHexDigit(s[i+2]) {
				out.WriteByte(hexByte(s[i+1], s[i+2]))
				i += 2
			} else {
				out.WriteByte('=')
			}
		default:
			out.WriteByte(s[i])
		}
	}
	return out.Bytes()
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexVal(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	default:
		return b - 'A' + 10
	}
}

func hexByte(hi, lo byte) byte {
	return hexVal(hi)<<4 | hexVal(lo)
}

// convertToUTF8 decodes raw from cs to UTF-8, trying this package's
// charset.Open first and falling back to golang.org/x/net/html/charset's
// broader alias table (go-guerrilla's own fallback) when charset.Open
// doesn't recognize the name.
func convertToUTF8(cs string, raw []byte) (string, error) {
	if strings.EqualFold(charset.Alias(cs), "utf-8") || strings.EqualFold(charset.Alias(cs), "us-ascii") {
		return string(raw), nil
	}
	if conv, err := charset.Open(cs); err == nil {
		defer conv.Close()
		if out, err := conv.Convert(raw); err == nil {
			return string(out), nil
		}
	}
	r, err := netcharset.NewReaderLabel(cs, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("header: unknown charset %q: %w", cs, err)
	}
	var out bytes.Buffer
	if _, err := out.ReadFrom(r); err != nil {
		return "", err
	}
	return out.String(), nil
}

// maxEncodedWordLen is the 75-character ceiling RFC 2047 §5 places on a
// single encoded word, framing included.
const maxEncodedWordLen = 75

// EncodeWord renders s as one or more RFC 2047 encoded words in the
// given charset name (almost always "utf-8" for outgoing mail), picking
// whichever of base64 ("B") or quoted-printable ("Q") encoding produces
// the shorter overall result and splitting on rune boundaries so no
// single word exceeds maxEncodedWordLen. Adjacent words come back joined
// by a single space; DecodeWords elides exactly that separator between
// two encoded words on the way back in.
func EncodeWord(charsetName, s string) string {
	runes := []rune(s)
	bWords := encodeWordsB(charsetName, runes)
	qWords := encodeWordsQ(charsetName, runes)
	b := strings.Join(bWords, " ")
	q := strings.Join(qWords, " ")
	if len(q) > 0 && len(q) < len(b) {
		return q
	}
	return b
}

// b64Len returns the base64-encoded length of n raw bytes.
func b64Len(n int) int { return (n + 2) / 3 * 4 }

func encodeWordsB(charsetName string, runes []rune) []string {
	prefix, suffix := "=?"+charsetName+"?B?", "?="
	budget := maxEncodedWordLen - len(prefix) - len(suffix)
	var words []string
	var cur []byte
	flush := func() {
		if len(cur) == 0 {
			return
		}
		words = append(words, prefix+base64.StdEncoding.EncodeToString(cur)+suffix)
		cur = nil
	}
	for _, r := range runes {
		rb := []byte(string(r))
		if len(cur) > 0 && b64Len(len(cur)+len(rb)) > budget {
			flush()
		}
		cur = append(cur, rb...)
	}
	flush()
	return words
}

func encodeWordsQ(charsetName string, runes []rune) []string {
	prefix, suffix := "=?"+charsetName+"?Q?", "?="
	budget := maxEncodedWordLen - len(prefix) - len(suffix)
	var words []string
	var cur bytes.Buffer
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		words = append(words, prefix+cur.String()+suffix)
		cur.Reset()
	}
	for _, r := range runes {
		var enc bytes.Buffer
		for _, b := range []byte(string(r)) {
			switch {
			case b == ' ':
				enc.WriteByte('_')
			case qWordSafe(b):
				enc.WriteByte(b)
			default:
				fmt.Fprintf(&enc, "=%02X", b)
			}
		}
		if cur.Len() > 0 && cur.Len()+enc.Len() > budget {
			flush()
		}
		cur.Write(enc.Bytes())
	}
	flush()
	return words
}

// qWordSafe reports whether b may appear literally in Q-encoded text:
// printable ASCII other than '=', '?' and '_', which RFC 2047 §4.2
// reserves for its own escaping.
func qWordSafe(b byte) bool {
	if b < 0x21 || b > 0x7e {
		return false
	}
	switch b {
	case '=', '?', '_':
		return false
	}
	return true
}
