package mimeparser

import "github.com/mailchannels/gomime/mimeobj"

// EventKind tags one low-level parse event.
type EventKind int

const (
	// EventHeaderBlockBegin marks the start offset of an object's
	// header block.
	EventHeaderBlockBegin EventKind = iota
	// EventHeaderField reports one raw header field with its offset.
	EventHeaderField
	// EventHeaderBlockEnd marks the offset just past the blank line
	// terminating the header block (== the body's start offset).
	EventHeaderBlockEnd
	// EventBodyBegin marks the start offset of an object's body bytes.
	EventBodyBegin
	// EventBodyEnd marks the offset just past an object's body bytes.
	EventBodyEnd
)

// Event is one step of the low-level iterator: a header-block or body
// boundary with its absolute byte offset, plus the Object it belongs
// to (the msgcheck-style flow walks these instead of the tree).
type Event struct {
	Kind   EventKind
	Offset int64

	// Name and Value are set only for EventHeaderField.
	Name  string
	Value string

	// Object is the tree node the event belongs to.
	Object *mimeobj.Object
}

// Stepper iterates the parse events of one message in document order.
type Stepper struct {
	events []Event
	next   int
}

// Steps parses buf and returns a Stepper over its header-block and body
// events. The same warnings a ParseBytes call would raise are raised
// here (parsing happens up front; stepping replays offsets in order).
func (p *Parser) Steps(buf []byte) *Stepper {
	s := &Stepper{}
	obj := p.ParseBytes(buf)
	if obj == nil {
		return s
	}
	s.collect(obj)
	return s
}

func (s *Stepper) collect(obj *mimeobj.Object) {
	s.events = append(s.events, Event{Kind: EventHeaderBlockBegin, Offset: obj.HeaderStart, Object: obj})
	for _, f := range obj.Headers.Fields {
		s.events = append(s.events, Event{Kind: EventHeaderField, Offset: f.Offset, Name: f.Name, Value: f.Value, Object: obj})
	}
	s.events = append(s.events, Event{Kind: EventHeaderBlockEnd, Offset: obj.BodyStart, Object: obj})
	s.events = append(s.events, Event{Kind: EventBodyBegin, Offset: obj.BodyStart, Object: obj})
	for _, c := range obj.Children {
		s.collect(c)
	}
	s.events = append(s.events, Event{Kind: EventBodyEnd, Offset: obj.BodyEnd, Object: obj})
}

// Step returns the next event and true, or a zero Event and false once
// the message is exhausted.
func (s *Stepper) Step() (Event, bool) {
	if s.next >= len(s.events) {
		return Event{}, false
	}
	ev := s.events[s.next]
	s.next++
	return ev, true
}
