package charset

// BestCharset scans p (assumed to be valid UTF-8 text, e.g. already
// decoded from a document of unknown origin) and returns the name of
// the highest-priority charset whose runeBitset bit survives every code
// point seen (non-ASCII code points outside the CJK sample leave only
// utf-8), the operation lineproto.BestCharset drives
// when canonicalizing outgoing flowed/plain text.
func BestCharset(p []byte) string {
	c := NewCandidateBitset()
	c.ObserveUTF8(p)
	return c.Best().Name()
}

// BestEncoding picks the most compact Content-Transfer-Encoding able to
// carry p losslessly: "7bit" if every byte is printable 7-bit ASCII plus
// LWSP/CRLF, "quoted-printable" if non-ASCII bytes are rare, and
// "base64" otherwise (matching the ratio go-guerrilla's mail/mime package
// uses to decide between qp and base64 for outgoing parts).
func BestEncoding(p []byte) string {
	var total, nonAscii, ctrl int
	for _, b := range p {
		total++
		switch {
		case b >= 0x80:
			nonAscii++
		case b == '\r' || b == '\n' || b == '\t':
			// allowed control bytes
		case b < 0x20 || b == 0x7f:
			ctrl++
		}
	}
	if total == 0 {
		return "7bit"
	}
	if nonAscii == 0 && ctrl == 0 {
		return "7bit"
	}
	// RFC 2045 §6.8 note: quoted-printable is a poor fit once more than
	// ~30% of bytes need escaping; fall back to base64.
	if (nonAscii+ctrl)*100/total <= 30 {
		return "quoted-printable"
	}
	return "base64"
}
