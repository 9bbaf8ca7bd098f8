// Package lineproto implements the line-oriented canonicalization and
// inspection filters: CRLF/SMTP dot-stuffing canonicalization,
// trailing-whitespace stripping, final-newline chomping, gzip framing,
// running MD5, OpenPGP armor detection, best-charset observation, and
// HTML-to-text conversion. Every filter here implements filter.Filter and
// is meant to be composed into a filter.Pipeline.
package lineproto

import "github.com/mailchannels/gomime/filter"

// CRLFMode selects the direction of CRLFFilter.
type CRLFMode int

const (
	// CRLFEncode rewrites bare LF (not preceded by CR) to CRLF, the
	// canonical wire form RFC 5322/SMTP require.
	CRLFEncode CRLFMode = iota
	// CRLFDecode rewrites CRLF to bare LF, the canonical in-memory form
	// most of this module's higher layers operate on.
	CRLFDecode
)

// CRLFFilter performs one direction of CRLF canonicalization. It keeps
// no state between chunks of its own: a trailing bare CR (which needs the
// next byte to know whether it was already a CRLF pair) is returned
// unconsumed, so the Pipeline backs it up into the next Step.
type CRLFFilter struct {
	mode CRLFMode
	out  []byte
}

// NewCRLFFilter returns a filter performing mode's transformation.
func NewCRLFFilter(mode CRLFMode) *CRLFFilter {
	return &CRLFFilter{mode: mode}
}

func (f *CRLFFilter) Step(input []byte) (output []byte, consumed int) {
	f.out = f.out[:0]
	switch f.mode {
	case CRLFEncode:
		return f.encode(input, false)
	default:
		return f.decode(input, false)
	}
}

func (f *CRLFFilter) Flush(input []byte) []byte {
	f.out = f.out[:0]
	var out []byte
	switch f.mode {
	case CRLFEncode:
		out, _ = f.encode(input, true)
	default:
		out, _ = f.decode(input, true)
	}
	return out
}

// encode backs up a lone trailing CR (it might start a CRLF pair split
// across Step calls) unless eos, in which case it is emitted as-is.
func (f *CRLFFilter) encode(input []byte, eos bool) ([]byte, int) {
	i := 0
	for i < len(input) {
		b := input[i]
		if b == '\r' {
			if i+1 < len(input) {
				if input[i+1] == '\n' {
					f.out = append(f.out, '\r', '\n')
					i += 2
					continue
				}
				f.out = append(f.out, '\r')
				i++
				continue
			}
			if !eos {
				return f.out, i // back up the lone trailing CR
			}
			f.out = append(f.out, '\r')
			i++
			continue
		}
		if b == '\n' {
			f.out = append(f.out, '\r', '\n')
			i++
			continue
		}
		f.out = append(f.out, b)
		i++
	}
	return f.out, i
}

// decode strips the CR of every CRLF pair, backing up a trailing lone CR
// the same way encode does.
func (f *CRLFFilter) decode(input []byte, eos bool) ([]byte, int) {
	i := 0
	for i < len(input) {
		b := input[i]
		if b == '\r' {
			if i+1 < len(input) {
				if input[i+1] == '\n' {
					f.out = append(f.out, '\n')
					i += 2
					continue
				}
				f.out = append(f.out, '\r')
				i++
				continue
			}
			if !eos {
				return f.out, i
			}
			f.out = append(f.out, '\r')
			i++
			continue
		}
		f.out = append(f.out, b)
		i++
	}
	return f.out, i
}

func (f *CRLFFilter) Reset() { f.out = f.out[:0] }

func (f *CRLFFilter) Copy() filter.Filter {
	return &CRLFFilter{mode: f.mode}
}
