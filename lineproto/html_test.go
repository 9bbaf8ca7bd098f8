package lineproto_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mailchannels/gomime/filter"
	"github.com/mailchannels/gomime/lineproto"
)

func TestRenderTextStripsTags(t *testing.T) {
	html := `<html><body><p>Hello <b>world</b></p></body></html>`
	text := lineproto.RenderText([]byte(html))
	assert.Contains(t, text, "Hello")
	assert.Contains(t, text, "world")
	assert.NotContains(t, text, "<p>")
}

func TestRenderTextInlinesAnchorHref(t *testing.T) {
	html := `<a href="https://example.com">click here</a>`
	text := lineproto.RenderText([]byte(html))
	assert.Contains(t, text, "click here")
	assert.Contains(t, text, "<https://example.com>")
}

func TestRenderTextSkipsScriptAndStyle(t *testing.T) {
	html := `<html><head><style>.x{}</style></head><body><script>alert(1)</script>visible text</body></html>`
	text := lineproto.RenderText([]byte(html))
	assert.Equal(t, "visible text", strings.TrimSpace(text))
}

func TestHTMLToTextFilterViaPipeline(t *testing.T) {
	f := filter.NewPipeline(lineproto.NewHTMLToTextFilter())
	out := f.Apply([]byte(`<p>one</p><p>two</p>`), true)
	assert.Contains(t, string(out), "one")
	assert.Contains(t, string(out), "two")
}
