package charset

// ID names one candidate charset in the enumeration bitset. The
// ordering here doubles as the fixed priority table used by best-charset
// inference: earlier entries are preferred when more than one charset's
// bit survives the intersection, with 8-bit single-byte charsets ranked
// ahead of multi-byte ones.
type ID int

const (
	USASCII ID = iota
	ISO8859_1
	ISO8859_2
	ISO8859_3
	ISO8859_4
	ISO8859_5
	ISO8859_6
	ISO8859_7
	ISO8859_8
	ISO8859_9
	ISO8859_10
	ISO8859_13
	ISO8859_14
	ISO8859_15
	Windows1251
	KOI8R
	KOI8U
	ShiftJIS
	EUCJP
	EUCKR
	GB2312
	Big5
	EUCTW
	ISO2022JP
	UTF8

	numCharsets
)

// Name returns the canonical lower-case IANA-ish name for id, the form
// used elsewhere in this package (Alias, Open) and in Content-Type
// charset parameters.
func (id ID) Name() string {
	if n, ok := charsetNames[id]; ok {
		return n
	}
	return "unknown"
}

var charsetNames = map[ID]string{
	USASCII:     "us-ascii",
	ISO8859_1:   "iso-8859-1",
	ISO8859_2:   "iso-8859-2",
	ISO8859_3:   "iso-8859-3",
	ISO8859_4:   "iso-8859-4",
	ISO8859_5:   "iso-8859-5",
	ISO8859_6:   "iso-8859-6",
	ISO8859_7:   "iso-8859-7",
	ISO8859_8:   "iso-8859-8",
	ISO8859_9:   "iso-8859-9",
	ISO8859_10:  "iso-8859-10",
	ISO8859_13:  "iso-8859-13",
	ISO8859_14:  "iso-8859-14",
	ISO8859_15:  "iso-8859-15",
	Windows1251: "windows-1251",
	KOI8R:       "koi8-r",
	KOI8U:       "koi8-u",
	ShiftJIS:    "shift-jis",
	EUCJP:       "euc-jp",
	EUCKR:       "euc-kr",
	GB2312:      "gb2312",
	Big5:        "big5",
	EUCTW:       "euc-tw",
	ISO2022JP:   "iso-2022-jp",
	UTF8:        "utf-8",
}

// byteBitset[b] is the set of charset IDs (as a bitmask, 1<<ID) for
// which byte value b is a defined/printable code point. Built once in
// init() below rather than probed against iconv at runtime. The 8-bit
// charsets (iso-8859-*, windows-1251, koi8-*) are all marked as
// assigning the 0xA0-0xFF range, except for a short hand-written list of
// unassigned positions (part of iso-8859-6's, and windows-1251's 0x98);
// other charsets' unassigned positions in that range are not excluded.
var byteBitset [256]uint32

func bit(id ID) uint32 { return 1 << uint(id) }

func init() {
	for b := 0; b < 0x80; b++ {
		// every charset we enumerate is ASCII-transparent below 0x80
		for id := USASCII; id < numCharsets; id++ {
			byteBitset[b] |= bit(id)
		}
	}
	eightBitCharsets := []ID{
		ISO8859_1, ISO8859_2, ISO8859_3, ISO8859_4, ISO8859_5, ISO8859_6,
		ISO8859_7, ISO8859_8, ISO8859_9, ISO8859_10, ISO8859_13, ISO8859_14,
		ISO8859_15, Windows1251, KOI8R, KOI8U,
	}
	// Unassigned code points excluded per charset, above the 0x80-0x9F
	// block (iso-8859-6's) or at single positions (windows-1251's 0x98).
	unassigned := map[ID]map[byte]bool{
		ISO8859_6:   {0xA1: true, 0xA2: true, 0xA3: true, 0xA5: true, 0xA6: true, 0xA7: true, 0xA8: true, 0xA9: true, 0xAA: true, 0xAB: true, 0xAE: true, 0xAF: true, 0xB0: true, 0xB1: true, 0xB3: true, 0xB4: true, 0xB5: true, 0xB6: true, 0xB7: true, 0xB8: true, 0xB9: true, 0xBA: true},
		Windows1251: {0x98: true},
	}
	for b := 0x80; b <= 0xFF; b++ {
		for _, id := range eightBitCharsets {
			if b >= 0x80 && b <= 0x9F && id != Windows1251 {
				// the C0/C1-control block is unassigned in classic
				// iso-8859-* (windows-1251 repurposes some of it).
				continue
			}
			if un := unassigned[id]; un != nil && un[byte(b)] {
				continue
			}
			byteBitset[b] |= bit(id)
		}
	}
	// UTF-8 and the multi-byte CJK charsets are judged at the code-point
	// level (runeBitset), not the byte level; US-ASCII never sets bits
	// above 0x7F.
}

// runeBitset mirrors byteBitset for multi-byte charsets, keyed by
// decoded code point rather than raw byte. Only ASCII and a
// representative CJK sample (the Hiragana/Katakana, Hangul and Han
// blocks) set bits beyond UTF-8; any other code point leaves only the
// UTF-8 bit, so a charset is never chosen for text it was not shown to
// represent.
func runeBitset(r rune) uint32 {
	var mask uint32
	mask |= bit(UTF8)
	switch {
	case r < 0x80:
		mask |= bit(USASCII)
	case r >= 0x3040 && r <= 0x30FF:
		mask |= bit(ShiftJIS) | bit(EUCJP) | bit(ISO2022JP)
	case r >= 0xAC00 && r <= 0xD7A3:
		mask |= bit(EUCKR)
	case r >= 0x4E00 && r <= 0x9FFF:
		mask |= bit(ShiftJIS) | bit(EUCJP) | bit(GB2312) | bit(Big5) | bit(EUCTW) | bit(EUCKR)
	}
	return mask
}

// CandidateBitset accumulates, across a byte sequence, the running
// intersection of charsets that could represent every byte/code point
// seen so far. A fresh Bitset has every charset bit set (no bytes
// constrain it yet).
type CandidateBitset struct {
	mask uint32
}

// NewCandidateBitset returns a Bitset with every enumerated charset
// still a candidate.
func NewCandidateBitset() *CandidateBitset {
	var all uint32
	for id := USASCII; id < numCharsets; id++ {
		all |= bit(id)
	}
	return &CandidateBitset{mask: all}
}

// ObserveBytes narrows the candidate set using raw bytes, the matching
// method for single-byte input (headers, unknown-charset bodies).
func (c *CandidateBitset) ObserveBytes(p []byte) {
	for _, b := range p {
		c.mask &= byteBitset[b]
	}
}

// ObserveUTF8 narrows the candidate set by decoding p as UTF-8 and
// intersecting against runeBitset per code point — use when the input is
// already known (or suspected) to be UTF-8 text being checked for a
// narrower best-fit charset.
func (c *CandidateBitset) ObserveUTF8(p []byte) {
	for i := 0; i < len(p); {
		r, n := NextChar(p[i:])
		c.mask &= runeBitset(r)
		i += n
	}
}

// Best returns the highest-priority charset ID still in the candidate
// set, defaulting to UTF-8 if nothing survived the intersection
// (an empty mask only happens when
// contradictory bytes were observed, e.g. mixing two incompatible 8-bit
// encodings).
func (c *CandidateBitset) Best() ID {
	for id := USASCII; id < numCharsets; id++ {
		if c.mask&bit(id) != 0 {
			return id
		}
	}
	return UTF8
}

// Reset clears the bitset back to "every charset still a candidate".
func (c *CandidateBitset) Reset() {
	*c = *NewCandidateBitset()
}
