// Package mimeobj defines the parsed MIME object tree mimeparser
// builds: a Kind-tagged Object (leaf part, multipart container, or
// encapsulated message), generalizing go-guerrilla's flat mime.Part
// struct into a recursive tree.
package mimeobj

import (
	"github.com/mailchannels/gomime/header"
	"github.com/mailchannels/gomime/options"
)

// Kind tags what shape an Object holds.
type Kind int

const (
	// Leaf is a part with a body and no children (text/*, image/*, ...).
	Leaf Kind = iota
	// Multipart is a container whose Children are its body parts
	// (multipart/mixed, multipart/alternative, ...).
	Multipart
	// Message is a single encapsulated message (message/rfc822 or
	// message/partial). For message/rfc822 its one child is the
	// encapsulated message's own root Object; a message/partial fragment
	// has no child, only its Partial* fields and raw body range.
	Message
)

// Object is one node of the parsed MIME tree.
type Object struct {
	Kind Kind

	Path string // dotted node path, e.g. "1.2.1", root is "1"

	Headers     *header.List
	ContentType *header.ContentType
	Disposition *header.ContentDisposition

	// Boundary is the multipart boundary string governing Children, set
	// only when Kind == Multipart.
	Boundary string

	// Preamble and Epilogue hold the raw bytes before the first boundary
	// delimiter and after the close-delimiter, respectively; both are set only when Kind == Multipart.
	Preamble []byte
	Epilogue []byte

	// Children holds body parts (Kind == Multipart) or the single
	// encapsulated message (Kind == Message).
	Children []*Object

	// Envelope holds the mbox "From " envelope line (terminator
	// excluded) when the message began with one; set only on the root
	// object of a ParseMessage/ParseBytes call.
	Envelope []byte

	// Byte offsets into the original stream, set by the parser.
	HeaderStart int64
	BodyStart   int64
	BodyEnd     int64

	// Partial-message fields (RFC 2046 §5.2.2, message/partial), set
	// only when ContentType.Full() == "message/partial".
	PartialID     string
	PartialNumber int
	PartialTotal  int // 0 if not specified on this part

	// Warnings accumulates a copy of every options.Warning raised while
	// this specific node (not its descendants) was being parsed, for
	// callers that want per-part diagnostics rather than only the
	// global callback stream.
	Warnings []options.Warning
}

// IsMultipart reports whether o is a multipart container.
func (o *Object) IsMultipart() bool { return o.Kind == Multipart }

// Walk calls fn for o and every descendant, depth-first, pre-order.
func (o *Object) Walk(fn func(*Object)) {
	fn(o)
	for _, c := range o.Children {
		c.Walk(fn)
	}
}

// Find returns the first descendant (including o itself) for which pred
// returns true, or nil.
func (o *Object) Find(pred func(*Object) bool) *Object {
	var found *Object
	o.Walk(func(n *Object) {
		if found == nil && pred(n) {
			found = n
		}
	})
	return found
}
