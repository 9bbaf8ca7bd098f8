package lineproto

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"

	"github.com/mailchannels/gomime/filter"
)

// HTMLToTextFilter renders an HTML document's text content as plain
// text, used when a message has only a text/html part and a plain-text
// rendering is needed (reply quoting, spam-filter body extraction). It
// buffers its entire input and converts at Flush: golang.org/x/net/html
// needs a complete token stream to resolve nested tags, so there is no
// useful incremental Step behavior here (mirrors GzipFilter's same
// buffer-to-Flush shape for structurally similar reasons).
type HTMLToTextFilter struct {
	buf bytes.Buffer
}

// NewHTMLToTextFilter returns a new HTMLToTextFilter.
func NewHTMLToTextFilter() *HTMLToTextFilter { return &HTMLToTextFilter{} }

func (f *HTMLToTextFilter) Step(input []byte) (output []byte, consumed int) {
	f.buf.Write(input)
	return nil, len(input)
}

func (f *HTMLToTextFilter) Flush(input []byte) []byte {
	f.buf.Write(input)
	text := RenderText(f.buf.Bytes())
	f.buf.Reset()
	return []byte(text)
}

func (f *HTMLToTextFilter) Reset() { f.buf.Reset() }

func (f *HTMLToTextFilter) Copy() filter.Filter { return NewHTMLToTextFilter() }

// skipTextTags are elements whose text content must never appear in the
// rendered plain text.
var skipTextTags = map[string]bool{
	"script": true, "style": true, "head": true, "title": true,
}

// blockTags force a line break before/after their content, a rough
// approximation of browser block-level rendering sufficient for
// quoting purposes.
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "tr": true, "li": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "table": true, "ul": true, "ol": true,
}

// RenderText walks an HTML document and returns its text content with
// anchor hrefs inlined as "text <url>" and block elements separated by
// newlines, the same shape go-guerrilla's plain-text digest view favors
// for HTML mail.
func RenderText(doc []byte) string {
	z := html.NewTokenizer(bytes.NewReader(doc))
	var out strings.Builder
	var skipDepth int
	var pendingHref string

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return strings.TrimSpace(collapseBlankLines(out.String()))
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			if skipTextTags[tag] {
				if tt == html.StartTagToken {
					skipDepth++
				}
				continue
			}
			if blockTags[tag] {
				out.WriteByte('\n')
			}
			if tag == "a" && hasAttr {
				pendingHref = findHref(z)
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skipTextTags[tag] {
				if skipDepth > 0 {
					skipDepth--
				}
				continue
			}
			if tag == "a" && pendingHref != "" {
				out.WriteString(" <" + pendingHref + ">")
				pendingHref = ""
			}
			if blockTags[tag] {
				out.WriteByte('\n')
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			out.Write(z.Text())
		}
	}
}

func findHref(z *html.Tokenizer) string {
	for {
		key, val, more := z.TagAttr()
		if string(key) == "href" {
			return string(val)
		}
		if !more {
			return ""
		}
	}
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blank := false
	for _, l := range lines {
		trimmed := strings.TrimSpace(l)
		if trimmed == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, trimmed)
	}
	return strings.Join(out, "\n")
}
