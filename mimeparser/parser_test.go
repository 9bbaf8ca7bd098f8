package mimeparser_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailchannels/gomime/mimeobj"
	"github.com/mailchannels/gomime/mimeparser"
	"github.com/mailchannels/gomime/options"
)

func crlf(s string) []byte {
	return []byte(strings.ReplaceAll(s, "\n", "\r\n"))
}

// TestParseSimpleMultipart parses a multipart/mixed with
// one leaf child, preamble and epilogue preserved verbatim.
func TestParseSimpleMultipart(t *testing.T) {
	msg := crlf("Content-Type: multipart/mixed; boundary=\"b\"\n\n" +
		"preamble\n" +
		"--b\n" +
		"Content-Type: text/plain\n\n" +
		"hello\n" +
		"--b--\n" +
		"epilogue\n")

	p := mimeparser.New(nil)
	obj := p.ParseBytes(msg)

	require.Equal(t, mimeobj.Multipart, obj.Kind)
	require.Len(t, obj.Children, 1)

	assert.Equal(t, "preamble\r\n", string(obj.Preamble))
	assert.Equal(t, "epilogue\r\n", string(obj.Epilogue))

	child := obj.Children[0]
	assert.Equal(t, mimeobj.Leaf, child.Kind)
	assert.Equal(t, "hello\r\n", string(p.RawBody(child)))
}

// TestParseMultipartWithoutEpilogueLeavesItEmpty covers the common case
// where the close-delimiter is the last line of the message.
func TestParseMultipartWithoutEpilogueLeavesItEmpty(t *testing.T) {
	msg := crlf("Content-Type: multipart/mixed; boundary=\"b\"\n\n" +
		"--b\n" +
		"Content-Type: text/plain\n\n" +
		"hello\n" +
		"--b--\n")

	p := mimeparser.New(nil)
	obj := p.ParseBytes(msg)

	require.Equal(t, mimeobj.Multipart, obj.Kind)
	assert.Empty(t, string(obj.Preamble))
	assert.Empty(t, string(obj.Epilogue))
}

// TestParseNestedMultipartEpilogueStopsAtAncestorBoundary ensures a
// nested multipart's epilogue scan doesn't run past the outer
// multipart's own next delimiter.
func TestParseNestedMultipartEpilogueStopsAtAncestorBoundary(t *testing.T) {
	msg := crlf("Content-Type: multipart/mixed; boundary=\"outer\"\n\n" +
		"--outer\n" +
		"Content-Type: multipart/mixed; boundary=\"inner\"\n\n" +
		"inner preamble\n" +
		"--inner\n" +
		"Content-Type: text/plain\n\n" +
		"hello\n" +
		"--inner--\n" +
		"inner epilogue\n" +
		"--outer--\n")

	p := mimeparser.New(nil)
	obj := p.ParseBytes(msg)

	require.Len(t, obj.Children, 1)
	inner := obj.Children[0]
	assert.Equal(t, mimeobj.Multipart, inner.Kind)
	assert.Equal(t, "inner preamble\r\n", string(inner.Preamble))
	assert.Equal(t, "inner epilogue\r\n", string(inner.Epilogue))
}

// TestParseDelimiterWithTrailingWhitespace covers the "trailing
// SP/HTAB before CRLF is allowed and ignored" rule for both the
// delimiter and close-delimiter lines.
func TestParseDelimiterWithTrailingWhitespace(t *testing.T) {
	msg := crlf("Content-Type: multipart/mixed; boundary=\"b\"\n\n" +
		"--b \t\n" +
		"Content-Type: text/plain\n\n" +
		"hello\n" +
		"--b-- \n")

	p := mimeparser.New(nil)
	obj := p.ParseBytes(msg)

	require.Equal(t, mimeobj.Multipart, obj.Kind)
	require.Len(t, obj.Children, 1)
	assert.Equal(t, "hello\r\n", string(p.RawBody(obj.Children[0])))
}

func TestParseHeadersFoldsContinuationLines(t *testing.T) {
	msg := crlf("Subject: hello\n  world\n\nbody\n")
	p := mimeparser.New(nil)
	obj := p.ParseBytes(msg)

	v, ok := obj.Headers.Get("Subject")
	require.True(t, ok)
	assert.Equal(t, "hello world", v)
}

func TestParseDuplicatedHeaderEmitsWarning(t *testing.T) {
	msg := crlf("Subject: one\nSubject: one\n\nbody\n")
	var warnings []options.Warning
	opts := options.New(options.WithWarningCallback(func(w options.Warning) { warnings = append(warnings, w) }))

	p := mimeparser.New(opts)
	p.ParseBytes(msg)

	require.NotEmpty(t, warnings)
	assert.Equal(t, options.DuplicatedHeader, warnings[0].Code)
}

// A repeated header whose occurrences disagree is the critical
// conflicting case, not a mere duplicate.
func TestParseConflictingHeaderEmitsCriticalWarning(t *testing.T) {
	msg := crlf("Subject: one\nSubject: two\n\nbody\n")
	var warnings []options.Warning
	opts := options.New(options.WithWarningCallback(func(w options.Warning) { warnings = append(warnings, w) }))

	p := mimeparser.New(opts)
	p.ParseBytes(msg)

	require.NotEmpty(t, warnings)
	assert.Equal(t, options.ConflictingHeader, warnings[0].Code)
	assert.True(t, warnings[0].Code.Critical())
}

func TestParseInvalidHeaderNameEndsHeaderBlock(t *testing.T) {
	msg := crlf("Subject: ok\nnot a header line\n\nbody\n")
	var warnings []options.Warning
	opts := options.New(options.WithWarningCallback(func(w options.Warning) { warnings = append(warnings, w) }))

	p := mimeparser.New(opts)
	obj := p.ParseBytes(msg)

	require.NotEmpty(t, warnings)
	assert.Equal(t, options.InvalidHeaderName, warnings[0].Code)
	assert.True(t, warnings[0].Code.Critical())
	// the offending line becomes part of the body
	assert.Contains(t, string(p.RawBody(obj)), "not a header line")
}

// TestParseHeaderOnlyMessageEmitsTruncatedMessage covers a
// header-only message (no blank line terminator before EOS): headers are still parsed, but a TruncatedMessage warning
// fires, and it must fire for a top-level message too, not just nested
// parts.
func TestParseHeaderOnlyMessageEmitsTruncatedMessage(t *testing.T) {
	msg := crlf("Subject: ok\nTo: a@b.example")
	var warnings []options.Warning
	opts := options.New(options.WithWarningCallback(func(w options.Warning) { warnings = append(warnings, w) }))

	p := mimeparser.New(opts)
	obj := p.ParseBytes(msg)

	v, ok := obj.Headers.Get("Subject")
	require.True(t, ok)
	assert.Equal(t, "ok", v)

	found := false
	for _, w := range warnings {
		if w.Code == options.TruncatedMessage {
			found = true
		}
	}
	assert.True(t, found, "expected a TruncatedMessage warning, got %+v", warnings)
}

func TestParseMultipartWithoutBoundaryIsCriticalAndOpaque(t *testing.T) {
	msg := crlf("Content-Type: multipart/mixed\n\nsome bytes\n")
	var warnings []options.Warning
	opts := options.New(options.WithWarningCallback(func(w options.Warning) { warnings = append(warnings, w) }))

	p := mimeparser.New(opts)
	obj := p.ParseBytes(msg)

	assert.Equal(t, mimeobj.Leaf, obj.Kind)
	require.NotEmpty(t, warnings)
	assert.Equal(t, options.MultipartWithoutBoundary, warnings[0].Code)
}

func TestParseMultipartWithNoChildrenIsMalformed(t *testing.T) {
	msg := crlf("Content-Type: multipart/mixed; boundary=\"b\"\n\n" +
		"--b--\n")
	var warnings []options.Warning
	opts := options.New(options.WithWarningCallback(func(w options.Warning) { warnings = append(warnings, w) }))

	p := mimeparser.New(opts)
	obj := p.ParseBytes(msg)

	assert.Equal(t, mimeobj.Multipart, obj.Kind)
	assert.Empty(t, obj.Children)
	require.NotEmpty(t, warnings)
	found := false
	for _, w := range warnings {
		if w.Code == options.MalformedMultipart {
			found = true
		}
	}
	assert.True(t, found)
}

func TestParseNestingOverflow(t *testing.T) {
	opts := options.New(options.WithMaxNestingDepth(1))
	var warnings []options.Warning
	opts.OnWarning = func(w options.Warning) { warnings = append(warnings, w) }

	msg := crlf("Content-Type: message/rfc822\n\n" +
		"Content-Type: message/rfc822\n\n" +
		"Content-Type: text/plain\n\nhi\n")

	p := mimeparser.New(opts)
	p.ParseBytes(msg)

	found := false
	for _, w := range warnings {
		if w.Code == options.NestingOverflow {
			found = true
		}
	}
	assert.True(t, found)
}

func TestParseMessagePartialRecordsMetadata(t *testing.T) {
	msg := crlf(`Content-Type: message/partial; id="abc"; number=2; total=3` + "\n\n" +
		"raw partial bytes\n")
	p := mimeparser.New(nil)
	obj := p.ParseBytes(msg)

	assert.Equal(t, "abc", obj.PartialID)
	assert.Equal(t, 2, obj.PartialNumber)
	assert.Equal(t, 3, obj.PartialTotal)
}

func TestDecodedBodyBase64(t *testing.T) {
	msg := crlf("Content-Type: text/plain\nContent-Transfer-Encoding: base64\n\n" +
		"SGVsbG8gV29ybGQ=\n")
	p := mimeparser.New(nil)
	obj := p.ParseBytes(msg)
	assert.Equal(t, "Hello World", string(p.DecodedBody(obj)))
}

func TestParseRecordsPerObjectWarnings(t *testing.T) {
	msg := crlf("Subject: one\nSubject: one\n\nbody\n")
	p := mimeparser.New(nil)
	obj := p.ParseBytes(msg)

	require.NotEmpty(t, obj.Warnings)
	assert.Equal(t, options.DuplicatedHeader, obj.Warnings[0].Code)
}

func TestEmptyMessageReturnsNil(t *testing.T) {
	p := mimeparser.New(nil)
	assert.Nil(t, p.ParseBytes(nil))
	assert.Nil(t, p.ParseBytes([]byte{}))
}

func TestParseBytesConsumesMboxEnvelope(t *testing.T) {
	msg := crlf("From alice@example.com Sat Aug  1 10:00:00 2026\n" +
		"Subject: hi\n\nbody\n")

	p := mimeparser.New(nil)
	obj := p.ParseBytes(msg)

	require.NotNil(t, obj)
	assert.Equal(t, "From alice@example.com Sat Aug  1 10:00:00 2026", string(obj.Envelope))
	_, ok := obj.Headers.Get("Subject")
	assert.True(t, ok)
}

func TestParsePartDoesNotSniffEnvelope(t *testing.T) {
	// "From " at the top of a bare part is just an invalid header line,
	// not an mbox envelope.
	msg := crlf("From alice\n\nbody\n")

	p := mimeparser.New(nil)
	obj := p.ParsePart(msg)

	require.NotNil(t, obj)
	assert.Nil(t, obj.Envelope)
}

func TestParseDuplicatedParameterWarnings(t *testing.T) {
	msg := crlf("Content-Type: text/plain; charset=utf-8; charset=utf-8\n\nbody\n")
	var warnings []options.Warning
	opts := options.New(options.WithWarningCallback(func(w options.Warning) { warnings = append(warnings, w) }))

	mimeparser.New(opts).ParseBytes(msg)

	require.NotEmpty(t, warnings)
	assert.Equal(t, options.DuplicatedParameter, warnings[0].Code)
	assert.Equal(t, "charset", string(warnings[0].Item))
}

func TestParseConflictingParameterWarnings(t *testing.T) {
	msg := crlf("Content-Type: text/plain; charset=utf-8; charset=koi8-r\n\nbody\n")
	var warnings []options.Warning
	opts := options.New(options.WithWarningCallback(func(w options.Warning) { warnings = append(warnings, w) }))

	mimeparser.New(opts).ParseBytes(msg)

	require.NotEmpty(t, warnings)
	assert.Equal(t, options.ConflictingParameter, warnings[0].Code)
}

func TestParsePreserveObsoleteFoldingKeepsWhitespace(t *testing.T) {
	msg := crlf("Subject: one\n\t\ttwo\n\nbody\n")

	obj := mimeparser.New(options.New(options.WithPreserveObsoleteFolding(true))).ParseBytes(msg)
	v, _ := obj.Headers.Get("Subject")
	assert.Equal(t, "one\t\ttwo", v)

	obj = mimeparser.New(nil).ParseBytes(msg)
	v, _ = obj.Headers.Get("Subject")
	assert.Equal(t, "one two", v)
}

func TestParseMessageRFC822WithEmptyInnerIsMalformed(t *testing.T) {
	msg := crlf("Content-Type: message/rfc822\n\n")
	var warnings []options.Warning
	opts := options.New(options.WithWarningCallback(func(w options.Warning) { warnings = append(warnings, w) }))

	obj := mimeparser.New(opts).ParseBytes(msg)

	require.Equal(t, mimeobj.Message, obj.Kind)
	codes := make(map[options.WarningCode]bool)
	for _, w := range warnings {
		codes[w.Code] = true
	}
	assert.True(t, codes[options.MalformedMessage])
}
