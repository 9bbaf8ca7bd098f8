package header

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// decodeDisplayName runs a raw address-list display-name phrase through
// RFC 2047 decoding (mail clients routinely put encoded words there)
// followed by NormalizeDisplayName, the "encoded-word display names"
// tolerance the address-list grammar calls for.
func decodeDisplayName(s string) string {
	if s == "" {
		return s
	}
	return NormalizeDisplayName(DecodeWords(s))
}

// displayNameTransform normalizes already-decoded display-name text to
// NFC and drops C0/C1 control characters, the same "normalize then
// filter" shape the pack's x/text-based mail repos apply before
// comparing or rendering free-text header content — cheap insurance
// against a control character smuggled in via an encoded word.
var displayNameTransform = transform.Chain(
	norm.NFC,
	runes.Remove(runes.In(unicode.Cc)),
)

// NormalizeDisplayName returns s in Unicode NFC form with control
// characters stripped, used whenever two display names (or an Autocrypt
// "addr" and a From display name) need a stable comparison or safe
// rendering.
func NormalizeDisplayName(s string) string {
	out, _, err := transform.String(displayNameTransform, s)
	if err != nil {
		return s
	}
	return out
}
