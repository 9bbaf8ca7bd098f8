// Package options implements the parser configuration and warning
// telemetry: compliance modes, fallback-charset ordering, and the
// warning callback mimeparser invokes on every RFC violation it tolerates
// or rejects. Modeled as a functional-options builder, the shape
// go-guerrilla's config.AppConfig loader and backends constructors both
// use for optional configuration.
package options

import "github.com/mailchannels/gomime/gomimelog"

// Compliance selects how tolerant a parsing stage is of input that
// violates the governing RFC.
type Compliance int

const (
	// Loose accepts common real-world deviations with a Warning instead
	// of failing outright. This is the default, matching go-guerrilla's
	// own bias toward accepting malformed mail rather than bouncing it.
	Loose Compliance = iota
	// Strict rejects (or emits a critical Warning for) any deviation.
	Strict
)

// WarningCode enumerates every RFC violation mimeparser can report, the
// fixed 17-entry set.
type WarningCode int

const (
	DuplicatedHeader WarningCode = iota
	DuplicatedParameter
	Unencoded8BitHeader
	InvalidContentType
	InvalidRFC2047Value
	InvalidParameter
	MalformedMultipart
	TruncatedMessage
	MalformedMessage
	InvalidAddressList
	PartWithoutContent
	PartWithoutHeadersOrContent

	// The remaining five are "critical": parsing continues, but the
	// violation is serious enough that callers should generally treat
	// the message as suspect.
	InvalidHeaderName
	ConflictingHeader
	ConflictingParameter
	MultipartWithoutBoundary
	NestingOverflow
)

// Critical reports whether code is one of the five critical warning
// codes.
func (c WarningCode) Critical() bool {
	switch c {
	case InvalidHeaderName, ConflictingHeader, ConflictingParameter,
		MultipartWithoutBoundary, NestingOverflow:
		return true
	}
	return false
}

var warningNames = map[WarningCode]string{
	DuplicatedHeader:            "duplicated_header",
	DuplicatedParameter:         "duplicated_parameter",
	Unencoded8BitHeader:         "unencoded_8bit_header",
	InvalidContentType:          "invalid_content_type",
	InvalidRFC2047Value:         "invalid_rfc2047_value",
	InvalidParameter:            "invalid_parameter",
	MalformedMultipart:          "malformed_multipart",
	TruncatedMessage:            "truncated_message",
	MalformedMessage:            "malformed_message",
	InvalidAddressList:          "invalid_address_list",
	PartWithoutContent:          "part_without_content",
	PartWithoutHeadersOrContent: "part_without_headers_or_content",
	InvalidHeaderName:           "invalid_header_name",
	ConflictingHeader:           "conflicting_header",
	ConflictingParameter:        "conflicting_parameter",
	MultipartWithoutBoundary:    "multipart_without_boundary",
	NestingOverflow:             "nesting_overflow",
}

func (c WarningCode) String() string {
	if n, ok := warningNames[c]; ok {
		return n
	}
	return "unknown_warning"
}

// Warning is one parser-reported RFC violation.
type Warning struct {
	Offset int64
	Code   WarningCode
	Item   []byte
}

// WarningFunc is invoked once per Warning, in byte order, as the parser
// encounters each violation. Parsing always continues afterward.
type WarningFunc func(Warning)

// Options configures one parse: compliance modes,
// fallback charsets, the nesting-depth limit, and the warning sink.
type Options struct {
	AddressCompliance       Compliance
	ParameterCompliance     Compliance
	RFC2047Compliance       Compliance
	AllowAddressesWithoutDomain bool
	FallbackCharsets        []string
	MaxNestingDepth         int
	OnWarning               WarningFunc

	// PreserveObsoleteFolding keeps each folded continuation line's
	// original leading whitespace in the unfolded header value instead
	// of collapsing every fold to a single space. Off by default; the
	// raw bytes in the source buffer are never mutated either way.
	PreserveObsoleteFolding bool

	// Logger, when set, receives a structured log entry (via
	// gomimelog.WarnOffset) for every Warning in addition to OnWarning
	// being invoked. Logging never drives control flow — it's a parallel
	// diagnostics path, same split as go-guerrilla's log.Logger versus its
	// error returns.
	Logger gomimelog.Logger
}

// Opt mutates an in-progress Options during New.
type Opt func(*Options)

// Default returns the default Options: loose compliance everywhere,
// fallback chain [utf-8, iso-8859-1], nesting limit 128, no warning
// sink.
func Default() *Options {
	return &Options{
		AddressCompliance:   Loose,
		ParameterCompliance: Loose,
		RFC2047Compliance:   Loose,
		FallbackCharsets:    []string{"utf-8", "iso-8859-1"},
		MaxNestingDepth:     128,
	}
}

// New builds an Options starting from Default and applying each Opt in
// order.
func New(opts ...Opt) *Options {
	o := Default()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithAddressCompliance sets the address-list parser's compliance mode.
func WithAddressCompliance(c Compliance) Opt {
	return func(o *Options) { o.AddressCompliance = c }
}

// WithParameterCompliance sets the MIME parameter parser's compliance
// mode.
func WithParameterCompliance(c Compliance) Opt {
	return func(o *Options) { o.ParameterCompliance = c }
}

// WithRFC2047Compliance sets the encoded-word decoder's compliance mode.
func WithRFC2047Compliance(c Compliance) Opt {
	return func(o *Options) { o.RFC2047Compliance = c }
}

// WithAllowAddressesWithoutDomain permits bare local-parts (no "@domain")
// in address lists, a real-world accommodation some MTAs need.
func WithAllowAddressesWithoutDomain(allow bool) Opt {
	return func(o *Options) { o.AllowAddressesWithoutDomain = allow }
}

// WithFallbackCharsets overrides the ordered list of charsets tried when
// a declared charset can't be opened or a body fails to decode under it.
func WithFallbackCharsets(names ...string) Opt {
	return func(o *Options) { o.FallbackCharsets = names }
}

// WithMaxNestingDepth overrides the multipart/message nesting limit
// that, once exceeded, aborts recursion and emits NestingOverflow.
func WithMaxNestingDepth(n int) Opt {
	return func(o *Options) { o.MaxNestingDepth = n }
}

// WithPreserveObsoleteFolding keeps the original folding whitespace of
// continuation lines in unfolded header values.
func WithPreserveObsoleteFolding(keep bool) Opt {
	return func(o *Options) { o.PreserveObsoleteFolding = keep }
}

// WithWarningCallback installs fn as the warning sink.
func WithWarningCallback(fn WarningFunc) Opt {
	return func(o *Options) { o.OnWarning = fn }
}

// WithLogger installs l as the structured-logging sink for every Warning
// raised during parsing, in addition to whatever OnWarning does.
func WithLogger(l gomimelog.Logger) Opt {
	return func(o *Options) { o.Logger = l }
}

// Warn reports a Warning to the configured sink and, if a Logger is
// configured, logs it too. A no-op if neither is configured.
// Centralizing this here (rather than having callers check OnWarning !=
// nil) keeps mimeparser's call sites terse.
func (o *Options) Warn(offset int64, code WarningCode, item []byte) {
	if o == nil {
		return
	}
	if o.Logger != nil {
		gomimelog.WarnOffset(o.Logger, offset, code.String(), item)
	}
	if o.OnWarning != nil {
		o.OnWarning(Warning{Offset: offset, Code: code, Item: item})
	}
}

// Validate reports whether o is internally consistent (positive nesting
// depth, at least one fallback charset), matching go-guerrilla's
// config.AppConfig.Validate pattern of failing fast on a bad config
// rather than misbehaving at parse time.
func (o *Options) Validate() error {
	if o.MaxNestingDepth <= 0 {
		return errInvalidNestingDepth
	}
	if len(o.FallbackCharsets) == 0 {
		return errNoFallbackCharsets
	}
	return nil
}
