// Package listutil implements the intrusive doubly-linked list,
// grounded on original_source/util/list.c. It underlies lru.Cache, which
// needs O(1) move-to-head for its recency order.
package listutil

// Node is embedded by any value stored in a List. A zero Node is a valid,
// unlinked node.
type Node struct {
	prev, next *Node
	list       *List
}

// List is a sentinel-headed intrusive doubly-linked list.
type List struct {
	head, tail Node // sentinels; head.next is the first real node
	length     int
}

// Init (re)initializes l to empty. A zero-value List must be passed
// through Init before use; New returns one that already has been.
func (l *List) Init() *List {
	l.head.next = &l.tail
	l.tail.prev = &l.head
	l.length = 0
	return l
}

// New returns an initialized, empty List.
func New() *List {
	l := &List{}
	return l.Init()
}

// IsEmpty reports whether l has no elements.
func (l *List) IsEmpty() bool { return l.length == 0 }

// Length returns the number of elements currently linked.
func (l *List) Length() int { return l.length }

// Prepend inserts n at the front of the list.
func (l *List) Prepend(n *Node) {
	l.insertAfter(n, &l.head)
}

// Append inserts n at the back of the list.
func (l *List) Append(n *Node) {
	l.insertAfter(n, l.tail.prev)
}

func (l *List) insertAfter(n, at *Node) {
	n.prev = at
	n.next = at.next
	at.next.prev = n
	at.next = n
	n.list = l
	l.length++
}

// Unlink removes n from whatever list it's linked into. Safe to call on
// an already-unlinked node.
func (n *Node) Unlink() {
	if n.list == nil {
		return
	}
	n.prev.next = n.next
	n.next.prev = n.prev
	n.list.length--
	n.prev, n.next, n.list = nil, nil, nil
}

// UnlinkHead removes and returns the first element, or nil if empty.
func (l *List) UnlinkHead() *Node {
	if l.IsEmpty() {
		return nil
	}
	n := l.head.next
	n.Unlink()
	return n
}

// UnlinkTail removes and returns the last element, or nil if empty.
func (l *List) UnlinkTail() *Node {
	if l.IsEmpty() {
		return nil
	}
	n := l.tail.prev
	n.Unlink()
	return n
}

// MoveToFront relinks n (already a member of l) to the head position —
// used by lru.Cache to promote a recently-looked-up entry.
func (l *List) MoveToFront(n *Node) {
	n.Unlink()
	l.Prepend(n)
}
