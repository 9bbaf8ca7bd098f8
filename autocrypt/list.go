package autocrypt

import "sort"

// List holds the Autocrypt headers collected from one message, keyed by
// normalized address, mirroring GMimeAutocryptHeaderList's array but
// indexed for O(1) per-sender lookup (the shape every real caller needs:
// "does this message carry a key for its From address?").
type List struct {
	byAddr map[string]*Header
	order  []string
}

// NewList returns an empty List.
func NewList() *List {
	return &List{byAddr: make(map[string]*Header)}
}

// ParseHeaders parses every raw Autocrypt header value found on a
// message (in header order) and adds the well-formed ones to the list.
// Per autocrypt.org §2.1, if more than one header resolves to the same
// "addr", every header for that address is invalid and dropped as a
// whole — a key cannot be picked unambiguously among several.
func (l *List) ParseHeaders(values []string) {
	seen := make(map[string]int)
	parsed := make(map[string]*Header)
	var order []string
	for _, v := range values {
		h, err := Parse(v)
		if err != nil {
			continue
		}
		if seen[h.Addr] == 0 {
			order = append(order, h.Addr)
		}
		seen[h.Addr]++
		parsed[h.Addr] = h
	}
	for _, addr := range order {
		if seen[addr] != 1 {
			continue // ambiguous: more than one header for this address
		}
		l.add(parsed[addr])
	}
}

func (l *List) add(h *Header) {
	if _, exists := l.byAddr[h.Addr]; !exists {
		l.order = append(l.order, h.Addr)
	}
	l.byAddr[h.Addr] = h
}

// Count returns how many distinct addresses have a valid header.
func (l *List) Count() int { return len(l.byAddr) }

// ForAddress returns the Header associated with addr (after Autocrypt
// address normalization), or nil if none.
func (l *List) ForAddress(addr string) *Header {
	norm, err := NormalizeAddr(addr)
	if err != nil {
		norm = addr
	}
	return l.byAddr[norm]
}

// All returns every header in the list, in first-seen order.
func (l *List) All() []*Header {
	out := make([]*Header, 0, len(l.order))
	for _, addr := range l.order {
		out = append(out, l.byAddr[addr])
	}
	return out
}

// Sorted returns every header in the list ordered per Less: address,
// then effective date, then keydata bytes, then prefer-encrypt value.
func (l *List) Sorted() []*Header {
	out := l.All()
	sort.Slice(out, func(i, j int) bool { return Less(out[i], out[j]) })
	return out
}
