package mimeparser

import "bytes"

// nextLine returns the content of the line starting at p.buf[pos]
// (excluding its terminator) and the offset immediately past the
// terminator, tolerating both CRLF and bare-LF termination. If pos is
// at EOF, ok is false.
func (p *Parser) nextLine(pos int) (line []byte, next int, ok bool) {
	if pos >= len(p.buf) {
		return nil, pos, false
	}
	rest := p.buf[pos:]
	i := bytes.IndexByte(rest, '\n')
	if i < 0 {
		// unterminated final line
		return rest, len(p.buf), true
	}
	end := i
	if end > 0 && rest[end-1] == '\r' {
		end--
	}
	return rest[:end], pos + i + 1, true
}

// isFWS reports whether b can begin a folded header continuation line.
func isFWS(b byte) bool { return b == ' ' || b == '\t' }

// validHeaderName reports whether name matches RFC 5322's ftext:
// printable US-ASCII excluding ':' (%x21-39 / %x3B-7E).
func validHeaderName(name []byte) bool {
	if len(name) == 0 {
		return false
	}
	for _, b := range name {
		if b < 0x21 || b > 0x7e || b == ':' {
			return false
		}
	}
	return true
}
