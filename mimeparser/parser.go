// Package mimeparser implements the MIME parser state machine:
// an offset-preserving header/multipart/message tokenizer descended from
// go-guerrilla's mail/mime.Parser, with its channel-and-goroutine
// streaming trick replaced by a synchronous scan over a fully-buffered
// stream.Stream. Boundary scanning, nesting-depth
// limiting, message/rfc822 recursion, message/partial metadata, and
// warning emission all live here.
package mimeparser

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/mailchannels/gomime/header"
	"github.com/mailchannels/gomime/mimeobj"
	"github.com/mailchannels/gomime/options"
	"github.com/mailchannels/gomime/stream"
)

const defaultBoundaryCacheSize = 64

// Parser parses one message at a time. It is not safe for concurrent
// use — construct one per message (or call Reset between messages),
// mirroring go-guerrilla's mime.Parser lifecycle.
type Parser struct {
	opts *options.Options

	buf   []byte
	pos   int
	stack []string

	boundaries *boundaryCache
}

// New returns a Parser configured by opts. A nil opts uses
// options.Default().
func New(opts *options.Options) *Parser {
	if opts == nil {
		opts = options.Default()
	}
	return &Parser{opts: opts, boundaries: newBoundaryCache(defaultBoundaryCacheSize)}
}

// ParseMessage reads src to completion and parses it as a top-level
// RFC 5322 message, returning the root mimeobj.Object.
func (p *Parser) ParseMessage(src stream.Stream) (*mimeobj.Object, error) {
	// Streams report end of data as a 0-byte read with a nil error, which
	// io.ReadAll would retry forever; io.Copy uses the stream's WriteTo.
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, src); err != nil {
		return nil, err
	}
	return p.ParseBytes(buf.Bytes()), nil
}

// ParseBytes parses a complete message already held in memory. Exposed
// directly for callers that already have the bytes (most test fixtures,
// and mimeparser's own message/rfc822 recursion use the same in-memory
// buffer rather than re-reading a stream).
func (p *Parser) ParseBytes(buf []byte) *mimeobj.Object {
	if len(buf) == 0 {
		return nil
	}
	p.buf = buf
	p.pos = 0
	p.stack = p.stack[:0]

	// mbox envelope sniff: a top-level message may open with a "From "
	// line (not a header — no colon) carrying the envelope sender and
	// delivery date. Consume it before the header block.
	var envelope []byte
	if bytes.HasPrefix(buf, []byte("From ")) {
		line, next, _ := p.nextLine(0)
		envelope = line
		p.pos = next
	}

	obj := p.parseObject(0, "1")
	if obj != nil {
		obj.Envelope = envelope
	}
	return obj
}

// ParsePart parses buf as a single MIME part (headers + body, no
// enclosing message framing, no mbox envelope sniff), the entry point
// used when a caller already has one part's raw bytes in hand (e.g.
// from an upstream protocol layer that split the parts itself).
func (p *Parser) ParsePart(buf []byte) *mimeobj.Object {
	if len(buf) == 0 {
		return nil
	}
	p.buf = buf
	p.pos = 0
	p.stack = p.stack[:0]
	return p.parseObject(0, "1")
}

// warn invokes the options-level warning callback and, when obj is
// non-nil, also appends a copy to obj.Warnings so callers walking the
// parsed tree can see per-part diagnostics without re-subscribing to
// the global callback.
func (p *Parser) warn(obj *mimeobj.Object, code options.WarningCode, offset int64, item []byte) {
	p.opts.Warn(offset, code, item)
	if obj != nil {
		obj.Warnings = append(obj.Warnings, options.Warning{Offset: offset, Code: code, Item: item})
	}
}

// warnParamIssues maps header.ParamIssue telemetry onto the
// DuplicatedParameter/ConflictingParameter warning codes.
func (p *Parser) warnParamIssues(obj *mimeobj.Object, issues []header.ParamIssue) {
	for _, is := range issues {
		code := options.DuplicatedParameter
		if is.Conflict {
			code = options.ConflictingParameter
		}
		p.warn(obj, code, obj.BodyStart, []byte(is.Name))
	}
}

// parseObject parses one header block plus whatever body shape its
// Content-Type implies, starting at p.pos and honoring p.stack for
// boundary termination.
func (p *Parser) parseObject(depth int, path string) *mimeobj.Object {
	obj := &mimeobj.Object{Path: path, HeaderStart: int64(p.pos)}
	obj.Headers = p.parseHeaders(obj)
	obj.BodyStart = int64(p.pos)

	for _, name := range []string{"Content-Type", "Content-Disposition", "To", "From", "Subject", "Date", "Message-Id"} {
		vals := obj.Headers.GetAll(name)
		if len(vals) < 2 {
			continue
		}
		// A repeated field with identical values is merely duplicated;
		// disagreeing values are the critical conflicting case.
		code := options.DuplicatedHeader
		for _, v := range vals[1:] {
			if v != vals[0] {
				code = options.ConflictingHeader
				break
			}
		}
		p.warn(obj, code, obj.BodyStart, []byte(name))
	}

	ctVal, hasCT := obj.Headers.Get("Content-Type")
	if !hasCT {
		ctVal = "text/plain"
	}
	ct, issues, err := header.ParseContentTypeReport(ctVal)
	if err != nil {
		p.warn(obj, options.InvalidContentType, obj.BodyStart, []byte(ctVal))
		ct = &header.ContentType{Type: "text", Subtype: "plain", Params: map[string]string{}}
	}
	p.warnParamIssues(obj, issues)
	obj.ContentType = ct

	if cdVal, ok := obj.Headers.Get("Content-Disposition"); ok {
		if cd, issues, err := header.ParseContentDispositionReport(cdVal); err == nil {
			obj.Disposition = cd
			p.warnParamIssues(obj, issues)
		} else {
			p.warn(obj, options.InvalidParameter, obj.BodyStart, []byte(cdVal))
		}
	}

	if depth >= p.opts.MaxNestingDepth {
		p.warn(obj, options.NestingOverflow, obj.BodyStart, nil)
		obj.Kind = mimeobj.Leaf
		p.consumeLeafBody(obj)
		return obj
	}

	full := ct.Full()
	switch {
	case strings.HasPrefix(full, "multipart/"):
		boundary := ct.Boundary()
		if boundary == "" {
			p.warn(obj, options.MultipartWithoutBoundary, obj.BodyStart, nil)
			obj.Kind = mimeobj.Leaf
			p.consumeLeafBody(obj)
			return obj
		}
		obj.Kind = mimeobj.Multipart
		obj.Boundary = boundary
		p.parseMultipartChildren(obj, boundary, depth, path)
		obj.BodyEnd = int64(p.pos)
		if len(obj.Children) == 0 {
			p.warn(obj, options.MalformedMultipart, obj.BodyEnd, nil)
		}

	case full == "message/partial":
		// A partial fragment's content is the raw inner bytes verbatim;
		// only the reassembled whole is parseable as a message.
		obj.Kind = mimeobj.Message
		obj.PartialID = ct.Params["id"]
		obj.PartialNumber, _ = strconv.Atoi(ct.Params["number"])
		obj.PartialTotal, _ = strconv.Atoi(ct.Params["total"])
		p.consumeLeafBody(obj)

	case full == "message/rfc822":
		obj.Kind = mimeobj.Message
		child := p.parseObject(depth+1, path+".1")
		obj.Children = []*mimeobj.Object{child}
		obj.BodyEnd = int64(p.pos)
		if len(child.Headers.Fields) == 0 && child.BodyEnd == child.BodyStart {
			p.warn(obj, options.MalformedMessage, obj.BodyStart, nil)
		}

	default:
		obj.Kind = mimeobj.Leaf
		p.consumeLeafBody(obj)
	}
	return obj
}

// consumeLeafBody scans forward to the next boundary-matching line (or
// EOF), recording the body's end offset. It never consumes the matching
// line itself — see scanToBoundary.
func (p *Parser) consumeLeafBody(obj *mimeobj.Object) {
	_, _, _, found := p.scanToBoundary()
	obj.BodyEnd = int64(p.pos)
	if !found && len(p.stack) > 0 {
		p.warn(obj, options.TruncatedMessage, obj.BodyEnd, nil)
	}
	if obj.BodyEnd == obj.BodyStart {
		code := options.PartWithoutContent
		if len(obj.Headers.Fields) == 0 {
			code = options.PartWithoutHeadersOrContent
		}
		p.warn(obj, code, obj.BodyEnd, nil)
	}
}

// parseMultipartChildren drives the boundary-delimited child loop:
// push this multipart's boundary,
// repeatedly scan to the next matching delimiter (recording the preamble
// and epilogue on obj), and recurse into parseObject
// for each child until the close-delimiter is seen, EOF is hit, or an
// ancestor's boundary line is encountered (which closes this multipart
// implicitly, per spec, without consuming that line).
func (p *Parser) parseMultipartChildren(obj *mimeobj.Object, boundary string, depth int, path string) {
	p.stack = append(p.stack, boundary)
	top := len(p.stack) - 1
	childIndex := 0

	defer func() {
		p.stack = p.stack[:top]
	}()

	first := true
	for {
		content, ownerDepth, isClose, found := p.scanToBoundary()
		if first {
			obj.Preamble = content
			first = false
		}
		if !found {
			p.warn(obj, options.MalformedMultipart, int64(p.pos), []byte(boundary))
			return
		}
		if ownerDepth != top {
			// An ancestor's delimiter: this multipart is implicitly
			// truncated. Leave the line unconsumed for that ancestor.
			p.warn(obj, options.TruncatedMessage, int64(p.pos), []byte(boundary))
			return
		}
		p.consumeLine()
		if isClose {
			p.scanEpilogue(obj, top)
			return
		}
		childIndex++
		child := p.parseObject(depth+1, path+"."+strconv.Itoa(childIndex))
		obj.Children = append(obj.Children, child)
	}
}

// scanEpilogue captures the bytes between this multipart's
// close-delimiter and the next boundary line owned by an ancestor (or
// EOF). This multipart's own boundary is
// popped off p.stack by the caller's deferred cleanup, but that hasn't
// run yet here, so the scan is done against a stack with top excluded
// to avoid matching a stray repeat of this multipart's own delimiter.
func (p *Parser) scanEpilogue(obj *mimeobj.Object, top int) {
	saved := p.stack
	p.stack = p.stack[:top]
	content, _, _, _ := p.scanToBoundary()
	p.stack = saved
	obj.Epilogue = content
}

// scanToBoundary scans forward from p.pos, line by line, accumulating
// content, until a line matches some entry of p.stack (checked
// innermost-first, i.e. top-down, per spec) or EOF is reached. The
// matching line is never consumed. ownerDepth is the matched stack
// index (meaningless when found is false).
func (p *Parser) scanToBoundary() (content []byte, ownerDepth int, isClose bool, found bool) {
	start := p.pos
	for {
		lineStart := p.pos
		line, next, ok := p.nextLine(p.pos)
		if !ok {
			p.pos = len(p.buf)
			return p.buf[start:p.pos], -1, false, false
		}
		// Trailing SP/HTAB before the line terminator is
		// allowed and ignored when matching a delimiter line.
		trimmed := bytes.TrimRight(line, " \t")
		for i := len(p.stack) - 1; i >= 0; i-- {
			cb := p.boundaries.get(p.stack[i])
			if bytes.Equal(trimmed, cb.closeDelim) {
				p.pos = lineStart
				return p.buf[start:lineStart], i, true, true
			}
			if bytes.Equal(trimmed, cb.delim) {
				p.pos = lineStart
				return p.buf[start:lineStart], i, false, true
			}
		}
		p.pos = next
	}
}

// consumeLine advances p.pos past the line currently at p.pos (used
// once scanToBoundary has confirmed it's a delimiter this level owns).
func (p *Parser) consumeLine() {
	_, next, ok := p.nextLine(p.pos)
	if ok {
		p.pos = next
	}
}

// parseHeaders scans header fields starting at p.pos until a blank
// line or EOF: folding
// continuation lines (beginning with SP/HTAB) into their predecessor,
// and ending the block (without consuming the offending line) the
// moment a line fails the "name:" shape, emitting InvalidHeaderName.
func (p *Parser) parseHeaders(obj *mimeobj.Object) *header.List {
	list := &header.List{}
	for {
		lineStart := p.pos
		line, next, ok := p.nextLine(p.pos)
		if !ok {
			// EOS reached without the blank line terminating the header
			// block. Fires regardless
			// of nesting depth: it's a property of this header block,
			// not of the enclosing multipart/message stack.
			p.warn(obj, options.TruncatedMessage, int64(lineStart), nil)
			return list
		}
		if len(line) == 0 {
			p.pos = next
			return list
		}
		if isFWS(line[0]) {
			// continuation with no preceding header: malformed, but
			// tolerated per loose mode by just dropping the line.
			p.pos = next
			continue
		}
		colon := bytes.IndexByte(line, ':')
		if colon < 0 || !validHeaderName(line[:colon]) {
			p.warn(obj, options.InvalidHeaderName, int64(lineStart), append([]byte{}, line...))
			return list
		}
		name := string(bytes.TrimSpace(line[:colon]))
		var value strings.Builder
		value.WriteString(strings.TrimSpace(string(line[colon+1:])))
		p.pos = next
		for {
			nextLine, nextNext, ok := p.nextLine(p.pos)
			if !ok || len(nextLine) == 0 || !isFWS(nextLine[0]) {
				break
			}
			if p.opts.PreserveObsoleteFolding {
				value.WriteString(string(nextLine))
			} else {
				value.WriteByte(' ')
				value.WriteString(strings.TrimSpace(string(nextLine)))
			}
			p.pos = nextNext
		}
		list.Add(name, value.String(), int64(lineStart))
	}
}
