// Package autocrypt parses and compares Autocrypt (autocrypt.org level
// 1.1) headers: "Autocrypt:" and "Autocrypt-Gossip:" attribute lists
// carrying a sender's OpenPGP key material opportunistically alongside a
// message. Grounded on original_source/gmime/gmime-autocrypt.h/.c,
// translated from its GObject class (GMimeAutocryptHeader) into a plain
// Go struct, since this module has no GObject-style type system to
// mirror.
package autocrypt

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"

	"golang.org/x/net/idna"

	"github.com/mailchannels/gomime/header"
)

// PreferEncrypt mirrors GMimeAutocryptPreferEncrypt.
type PreferEncrypt int

const (
	PreferEncryptNone PreferEncrypt = iota
	PreferEncryptMutual
)

// Header is one parsed Autocrypt (or Autocrypt-Gossip) header value.
type Header struct {
	Addr           string
	PreferEncrypt  PreferEncrypt
	KeyData        []byte
	EffectiveDate  int64 // set by the caller from the message's Date header; this package doesn't read it
}

var (
	errMissingAddr    = errors.New("autocrypt: missing required \"addr\" attribute")
	errMissingKeyData = errors.New("autocrypt: missing required \"keydata\" attribute")
	errUnknownCritical = errors.New("autocrypt: unknown critical attribute")
)

// knownAttrs are the attribute names Parse recognizes. Any other
// attribute whose name does not begin with "_" is critical and causes
// the whole header to be discarded (autocrypt.org §2.1).
var knownAttrs = map[string]bool{
	"addr": true, "prefer-encrypt": true, "keydata": true,
}

// Parse parses a single Autocrypt/Autocrypt-Gossip header value into a
// Header, per autocrypt.org's "attr1=val1; attr2=val2; ..." syntax (note
// this is RFC 2045 parameter syntax, reused here via header.ParseParams,
// except "addr" and "keydata" are mandatory and unknown attribute names
// beginning with a non-"_" character are fatal to the whole header).
func Parse(value string) (*Header, error) {
	params := header.ParseParams(stripBareAddrPrefix(value))
	for name := range params {
		if knownAttrs[name] {
			continue
		}
		if strings.HasPrefix(name, "_") {
			continue // non-critical extension attribute, ignore
		}
		return nil, errUnknownCritical
	}
	addr, ok := params["addr"]
	if !ok || addr == "" {
		return nil, errMissingAddr
	}
	keydataB64, ok := params["keydata"]
	if !ok || keydataB64 == "" {
		return nil, errMissingKeyData
	}
	keydataB64 = strings.Join(strings.Fields(keydataB64), "")
	keydata, err := base64.StdEncoding.DecodeString(keydataB64)
	if err != nil {
		return nil, err
	}
	normAddr, _ := NormalizeAddr(strings.TrimSpace(addr))
	h := &Header{Addr: normAddr, KeyData: keydata}
	switch strings.ToLower(params["prefer-encrypt"]) {
	case "mutual":
		h.PreferEncrypt = PreferEncryptMutual
	default:
		h.PreferEncrypt = PreferEncryptNone
	}
	return h, nil
}

// stripBareAddrPrefix is a no-op placeholder for symmetry with other
// header value preprocessors; ParseParams already tolerates the leading
// "addr=...;" form directly.
func stripBareAddrPrefix(value string) string { return value }

// NormalizeAddr lower-cases and IDNA-normalizes the domain part of an
// email address for the address-equality comparison autocrypt.org §2.2
// requires between a message's From address and a header's "addr"
// attribute.
func NormalizeAddr(addr string) (string, error) {
	at := strings.LastIndexByte(addr, '@')
	if at < 0 {
		return strings.ToLower(addr), nil
	}
	local, domain := addr[:at], addr[at+1:]
	normDomain, err := idna.Lookup.ToASCII(strings.ToLower(domain))
	if err != nil {
		normDomain = strings.ToLower(domain)
	}
	return strings.ToLower(local) + "@" + normDomain, nil
}

// Compare reports whether two addresses are equal under Autocrypt's
// normalization rules.
func Compare(a, b string) bool {
	na, errA := NormalizeAddr(a)
	nb, errB := NormalizeAddr(b)
	if errA != nil || errB != nil {
		return strings.EqualFold(a, b)
	}
	return na == nb
}

// foldWidth is the column width Emit wraps keydata at, per
// autocrypt.org level 1.1's recommendation that generated headers stay
// readable in a terminal.
const foldWidth = 72

// Emit renders h as a folded "Autocrypt:" (or "Autocrypt-Gossip:",
// when gossip is true) header value: "addr=...; [prefer-encrypt=mutual;]
// keydata=..." with the keydata's base64 broken across continuation
// lines every foldWidth columns. gossip suppresses prefer-encrypt, since
// autocrypt.org forbids that attribute on a gossip header.
func (h *Header) Emit(gossip bool) string {
	var sb strings.Builder
	sb.WriteString("addr=")
	sb.WriteString(h.Addr)
	sb.WriteString("; ")
	if !gossip && h.PreferEncrypt == PreferEncryptMutual {
		sb.WriteString("prefer-encrypt=mutual; ")
	}
	sb.WriteString("keydata=")
	sb.WriteString(foldBase64(base64.StdEncoding.EncodeToString(h.KeyData)))
	return sb.String()
}

// foldBase64 inserts "\r\n " (a folding-whitespace continuation, RFC
// 5322 §2.2.3) every foldWidth characters of s.
func foldBase64(s string) string {
	var sb strings.Builder
	for len(s) > foldWidth {
		sb.WriteString(s[:foldWidth])
		sb.WriteString("\r\n ")
		s = s[foldWidth:]
	}
	sb.WriteString(s)
	return sb.String()
}

// Less orders two Headers for deterministic selection among candidates
// for the same address: address (already IDN-normalized by
// Parse/NormalizeAddr), then effective date, then keydata bytes
// (lexicographic, shorter first), then prefer-encrypt value.
func Less(a, b *Header) bool {
	if a.Addr != b.Addr {
		return a.Addr < b.Addr
	}
	if a.EffectiveDate != b.EffectiveDate {
		return a.EffectiveDate < b.EffectiveDate
	}
	if c := bytes.Compare(a.KeyData, b.KeyData); c != 0 {
		if len(a.KeyData) != len(b.KeyData) {
			return len(a.KeyData) < len(b.KeyData)
		}
		return c < 0
	}
	return a.PreferEncrypt < b.PreferEncrypt
}
