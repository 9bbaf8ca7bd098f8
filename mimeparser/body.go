package mimeparser

import (
	"strings"

	"github.com/mailchannels/gomime/charset"
	"github.com/mailchannels/gomime/codec"
	"github.com/mailchannels/gomime/mimeobj"
	"github.com/mailchannels/gomime/options"
)

// RawBody returns obj's body exactly as it appeared in the source
// buffer, still under whatever Content-Transfer-Encoding it declared.
func (p *Parser) RawBody(obj *mimeobj.Object) []byte {
	if obj.BodyEnd < obj.BodyStart {
		return nil
	}
	return p.buf[obj.BodyStart:obj.BodyEnd]
}

// DecodedBody returns obj's body after undoing its
// Content-Transfer-Encoding (base64/quoted-printable/uuencode/7bit/
// 8bit/binary all handled; x-uuencode is treated the same as uuencode),
// the operation a caller uses to get at a leaf part's actual bytes.
func (p *Parser) DecodedBody(obj *mimeobj.Object) []byte {
	raw := p.RawBody(obj)
	enc, _ := obj.Headers.Get("Content-Transfer-Encoding")
	enc = strings.ToLower(strings.TrimSpace(enc))
	switch enc {
	case "base64":
		return codec.NewBase64DecodeFilter().Flush(raw)
	case "quoted-printable":
		return codec.NewQuotedPrintableDecodeFilter().Flush(raw)
	case "x-uuencode", "uuencode":
		return codec.NewUUDecodeFilter(true).Flush(raw)
	default: // 7bit, 8bit, binary, or unspecified
		return raw
	}
}

// DecodedText returns DecodedBody converted to UTF-8 using obj's
// declared (or inferred) charset, for text/* parts. Non-text parts get
// their decoded bytes back unconverted.
func (p *Parser) DecodedText(obj *mimeobj.Object) (string, error) {
	body := p.DecodedBody(obj)
	if !strings.EqualFold(obj.ContentType.Type, "text") {
		return string(body), nil
	}
	cs := obj.ContentType.Charset()
	if strings.EqualFold(charset.Alias(cs), "utf-8") || strings.EqualFold(charset.Alias(cs), "us-ascii") {
		return string(body), nil
	}
	conv, err := charset.Open(cs)
	if err != nil {
		if guess, derr := charset.Detect(body); derr == nil && guess.Confidence > 0 {
			if conv, err = charset.Open(guess.Charset); err == nil {
				p.warn(obj, options.Unencoded8BitHeader, obj.BodyStart, []byte(guess.Charset))
			}
		}
	}
	if err != nil {
		for _, fallback := range p.opts.FallbackCharsets {
			if conv, err = charset.Open(fallback); err == nil {
				break
			}
		}
		if err != nil {
			return string(body), err
		}
	}
	defer conv.Close()
	out, err := conv.Convert(body)
	if err != nil {
		return string(body), err
	}
	return string(out), nil
}
