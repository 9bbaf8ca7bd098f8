package charset

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"
	iconv "gopkg.in/iconv.v1"
)

// Converter turns bytes in some source charset into UTF-8, matching the
// role of go-guerrilla's mail/iconv.Converter and mail/encoding.Converter.
type Converter interface {
	Convert(src []byte) (dst []byte, err error)
	Close() error
}

// aliasTable carries over every charset-name substitution go-guerrilla
// applies in util.fixCharset/mail.envelope's charset handling, plus a
// handful of extra aliases go-guerrilla's smaller table dropped
// (windows-31j, koi8r without a hyphen, the x- prefixed legacy names).
var aliasTable = map[string]string{
	"ansi_x3.4-1968": "us-ascii",
	"ansi_x3.4-1986": "us-ascii",
	"us":             "us-ascii",
	"ascii":          "us-ascii",
	"iso646-us":      "us-ascii",
	"latin1":         "iso-8859-1",
	"latin2":         "iso-8859-2",
	"latin3":         "iso-8859-3",
	"latin4":         "iso-8859-4",
	"latin5":         "iso-8859-9",
	"latin9":         "iso-8859-15",
	"cyrillic":       "iso-8859-5",
	"arabic":         "iso-8859-6",
	"greek":          "iso-8859-7",
	"hebrew":         "iso-8859-8",
	"cp1251":         "windows-1251",
	"win-1251":       "windows-1251",
	"ms-ansi":        "windows-1251",
	"x-sjis":         "shift-jis",
	"shift_jis":      "shift-jis",
	"sjis":           "shift-jis",
	"windows-31j":    "shift-jis",
	"x-euc-jp":       "euc-jp",
	"ujis":           "euc-jp",
	"koi8r":          "koi8-r",
	"koi8":           "koi8-r",
	"koi8u":          "koi8-u",
	"gb_2312-80":     "gb2312",
	"csgb2312":       "gb2312",
	"big-5":          "big5",
	"big-five":       "big5",
	"cn-big5":        "big5",
	"utf8":           "utf-8",
	"unicode-1-1-utf-8": "utf-8",
}

// Alias resolves common charset-name variants to the canonical name used
// elsewhere in this package, mirroring go-guerrilla's fixCharset.
func Alias(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if canon, ok := aliasTable[n]; ok {
		return canon
	}
	return n
}

// xtextEncodings maps a canonical charset name to a golang.org/x/text
// Encoding, for the charsets that package supports natively without
// shelling out to iconv. OpenText looks up anything absent here in
// golang.org/x/net/html/charset's table; Open falls back to iconv only
// when both miss.
var xtextEncodings = map[string]encoding.Encoding{
	"iso-8859-1":   charmap.ISO8859_1,
	"iso-8859-2":   charmap.ISO8859_2,
	"iso-8859-3":   charmap.ISO8859_3,
	"iso-8859-4":   charmap.ISO8859_4,
	"iso-8859-5":   charmap.ISO8859_5,
	"iso-8859-6":   charmap.ISO8859_6,
	"iso-8859-7":   charmap.ISO8859_7,
	"iso-8859-8":   charmap.ISO8859_8,
	"iso-8859-9":   charmap.ISO8859_9,
	"iso-8859-10":  charmap.ISO8859_10,
	"iso-8859-13":  charmap.ISO8859_13,
	"iso-8859-14":  charmap.ISO8859_14,
	"iso-8859-15":  charmap.ISO8859_15,
	"windows-1251": charmap.Windows1251,
	"koi8-r":       charmap.KOI8R,
	"koi8-u":       charmap.KOI8U,
	"shift-jis":    japanese.ShiftJIS,
	"euc-jp":       japanese.EUCJP,
	"iso-2022-jp":  japanese.ISO2022JP,
	"euc-kr":       korean.EUCKR,
	"gb2312":       simplifiedchinese.HZGB2312,
	"big5":         traditionalchinese.Big5,
}

// TextConverter is the pure-Go converter, backed by golang.org/x/text,
// the path go-guerrilla's mail/encoding package prefers when its iconv
// binding isn't available (see DESIGN.md).
type TextConverter struct {
	dec *encoding.Decoder
}

// OpenText returns a TextConverter for name if golang.org/x/text carries
// a matching Encoding, or via golang.org/x/net/html/charset's broader
// alias table as a fallback.
func OpenText(name string) (*TextConverter, error) {
	canon := Alias(name)
	if enc, ok := xtextEncodings[canon]; ok {
		return &TextConverter{dec: enc.NewDecoder()}, nil
	}
	if enc, _ := charset.Lookup(canon); enc != nil {
		return &TextConverter{dec: enc.NewDecoder()}, nil
	}
	return nil, fmt.Errorf("charset: unsupported charset %q", name)
}

// Convert transforms src (in the converter's source charset) to UTF-8.
func (c *TextConverter) Convert(src []byte) ([]byte, error) {
	out, _, err := transform.Bytes(c.dec, src)
	return out, err
}

// Close is a no-op for TextConverter; it exists to satisfy Converter.
func (c *TextConverter) Close() error { return nil }

// IconvConverter wraps gopkg.in/iconv.v1, matching go-guerrilla's
// mail/iconv.Converter for charsets golang.org/x/text doesn't cover
// (legacy/rare 8-bit code pages, EUC-TW, and anything the host iconv
// implementation recognizes that x/text does not).
type IconvConverter struct {
	cd iconv.Iconv
}

// OpenIconv opens an iconv conversion descriptor from name to UTF-8.
func OpenIconv(name string) (*IconvConverter, error) {
	cd, err := iconv.Open("utf-8", Alias(name))
	if err != nil {
		return nil, fmt.Errorf("charset: iconv open %q: %w", name, err)
	}
	return &IconvConverter{cd: cd}, nil
}

// Convert transforms src to UTF-8 via iconv, matching go-guerrilla's
// chunked iconv.Conv loop in mail/iconv/iconv.go.
func (c *IconvConverter) Convert(src []byte) ([]byte, error) {
	var out bytes.Buffer
	in := src
	buf := make([]byte, 4096)
	for len(in) > 0 {
		converted, inleft, err := c.cd.Conv(in, buf)
		if len(converted) > 0 {
			out.Write(converted)
		}
		if err != nil {
			if err == iconv.E2BIG {
				in = in[len(in)-inleft:]
				continue
			}
			return out.Bytes(), err
		}
		in = in[len(in)-inleft:]
	}
	return out.Bytes(), nil
}

// Close releases the iconv descriptor.
func (c *IconvConverter) Close() error { return c.cd.Close() }

// Open resolves name to a Converter using the fallback chain go-guerrilla
// prefers (x/text first, since it needs no cgo, then iconv for anything
// x/text can't decode).
func Open(name string) (Converter, error) {
	if tc, err := OpenText(name); err == nil {
		return tc, nil
	}
	return OpenIconv(name)
}

// ConvertAll drains r fully through conv, a helper used by header
// decoders that already hold the whole encoded-word payload in memory.
func ConvertAll(conv Converter, r io.Reader) ([]byte, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return conv.Convert(src)
}
