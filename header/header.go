package header

import (
	"errors"
	"strings"
)

var errEmptyContentType = errors.New("header: empty content-type")

// Field is one raw header field as it appeared on the wire: the name
// exactly as written, the unfolded value (continuation lines joined,
// leading whitespace of each continuation collapsed to a single space
// unless Options.PreserveObsoleteFolding keeps the raw bytes instead),
// and the byte offset the field started at.
type Field struct {
	Name   string
	Value  string
	Offset int64
}

// List is an ordered collection of header fields, preserving duplicates
// (RFC 5322 permits repeated fields; only the parser decides which ones
// are semantically "conflicting").
type List struct {
	Fields []Field
}

// Add appends a field.
func (l *List) Add(name, value string, offset int64) {
	l.Fields = append(l.Fields, Field{Name: name, Value: value, Offset: offset})
}

// Get returns the value of the first field matching name
// case-insensitively, and whether any such field existed.
func (l *List) Get(name string) (string, bool) {
	for _, f := range l.Fields {
		if strings.EqualFold(f.Name, name) {
			return f.Value, true
		}
	}
	return "", false
}

// GetAll returns every field value matching name case-insensitively, in
// wire order.
func (l *List) GetAll(name string) []string {
	var out []string
	for _, f := range l.Fields {
		if strings.EqualFold(f.Name, name) {
			out = append(out, f.Value)
		}
	}
	return out
}

// Count returns how many fields match name case-insensitively.
func (l *List) Count(name string) int {
	return len(l.GetAll(name))
}

// ContentType is a parsed Content-Type header value.
type ContentType struct {
	Type    string // e.g. "text"
	Subtype string // e.g. "plain"
	Params  map[string]string
}

// Full returns "type/subtype".
func (c *ContentType) Full() string {
	return strings.ToLower(c.Type) + "/" + strings.ToLower(c.Subtype)
}

// Charset returns the "charset" parameter, defaulting to "us-ascii" per
// RFC 2045 §5.2 when Type is "text" and no charset was specified.
func (c *ContentType) Charset() string {
	if cs, ok := c.Params["charset"]; ok && cs != "" {
		return cs
	}
	if strings.EqualFold(c.Type, "text") {
		return "us-ascii"
	}
	return ""
}

// Boundary returns the "boundary" parameter.
func (c *ContentType) Boundary() string {
	return c.Params["boundary"]
}

// ParseContentType parses a Content-Type header value into its
// type/subtype and RFC 2231-aware parameter map.
func ParseContentType(value string) (*ContentType, error) {
	ct, _, err := ParseContentTypeReport(value)
	return ct, err
}

// ParseContentTypeReport is ParseContentType plus the parameter
// duplicate/conflict telemetry of ParseParamsReport.
func ParseContentTypeReport(value string) (*ContentType, []ParamIssue, error) {
	typ, rest := splitTypeSubtype(value)
	parts := strings.SplitN(typ, "/", 2)
	params, issues := ParseParamsReport(rest)
	ct := &ContentType{Params: params}
	if len(parts) == 2 {
		ct.Type = strings.TrimSpace(parts[0])
		ct.Subtype = strings.TrimSpace(parts[1])
	} else {
		ct.Type = strings.TrimSpace(parts[0])
		ct.Subtype = ""
	}
	if ct.Type == "" {
		return ct, issues, errEmptyContentType
	}
	return ct, issues, nil
}

func splitTypeSubtype(value string) (typeSubtype, rest string) {
	i := strings.IndexByte(value, ';')
	if i < 0 {
		return strings.TrimSpace(value), ""
	}
	return strings.TrimSpace(value[:i]), value[i:]
}

// ContentDisposition is a parsed Content-Disposition header value.
type ContentDisposition struct {
	Disposition string // "inline" or "attachment"
	Params      map[string]string
}

// Filename returns the "filename" parameter.
func (d *ContentDisposition) Filename() string {
	return d.Params["filename"]
}

// ParseContentDisposition parses a Content-Disposition header value.
func ParseContentDisposition(value string) (*ContentDisposition, error) {
	cd, _, err := ParseContentDispositionReport(value)
	return cd, err
}

// ParseContentDispositionReport is ParseContentDisposition plus the
// parameter duplicate/conflict telemetry of ParseParamsReport.
func ParseContentDispositionReport(value string) (*ContentDisposition, []ParamIssue, error) {
	disp, rest := splitTypeSubtype(value)
	params, issues := ParseParamsReport(rest)
	return &ContentDisposition{Disposition: strings.ToLower(disp), Params: params}, issues, nil
}
