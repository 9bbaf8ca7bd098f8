package mimeparser

import (
	"errors"
	"strings"
	"time"

	"github.com/mailchannels/gomime/header"
	"github.com/mailchannels/gomime/mimeobj"
	"github.com/mailchannels/gomime/options"
)

var errNoDateHeader = errors.New("mimeparser: no Date header")

// DecodedHeader returns the named header's value with every RFC 2047
// encoded word decoded, and whether the header was present at all.
// Under strict RFC 2047 compliance a malformed encoded word is dropped
// from the result and an InvalidRFC2047Value warning is raised for it;
// under loose compliance (the default) it is kept verbatim and only the
// warning is raised. Raw header bytes are stored at parse time and decoded here on
// demand.
func (p *Parser) DecodedHeader(obj *mimeobj.Object, name string) (string, bool) {
	field := p.findField(obj, name)
	if field == nil {
		return "", false
	}
	strict := p.opts.RFC2047Compliance == options.Strict
	decoded, invalid := header.DecodeWordsReport(field.Value, strict)
	for _, word := range invalid {
		p.warn(obj, options.InvalidRFC2047Value, field.Offset, []byte(word))
	}
	return decoded, true
}

// AddressList parses the named header (To, Cc, From, Reply-To, ...) as
// an RFC 5322 address-list under the configured compliance options. A
// parse failure raises InvalidAddressList and returns whatever
// addresses were recovered before the failure.
func (p *Parser) AddressList(obj *mimeobj.Object, name string) []header.Address {
	field := p.findField(obj, name)
	if field == nil {
		return nil
	}
	loose := p.opts.AddressCompliance == options.Loose
	addrs, err := header.ParseAddressListMode([]byte(field.Value), loose, p.opts.AllowAddressesWithoutDomain)
	if err != nil {
		p.warn(obj, options.InvalidAddressList, field.Offset, []byte(field.Value))
	}
	return addrs
}

// Date parses obj's Date header. A missing header returns the zero time
// and errNoDateHeader; an unparseable value returns header.ParseDate's
// result and error.
func (p *Parser) Date(obj *mimeobj.Object) (time.Time, error) {
	field := p.findField(obj, "Date")
	if field == nil {
		return time.Time{}, errNoDateHeader
	}
	return header.ParseDate(field.Value)
}

func (p *Parser) findField(obj *mimeobj.Object, name string) *header.Field {
	for i := range obj.Headers.Fields {
		if strings.EqualFold(obj.Headers.Fields[i].Name, name) {
			return &obj.Headers.Fields[i]
		}
	}
	return nil
}
