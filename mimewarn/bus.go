// Package mimewarn provides an optional secondary warning sink: an
// EventBus topic per options.WarningCode that other parts of a larger
// application (a spam filter, an audit log) can subscribe to
// independently of the synchronous options.WarningFunc callback a
// mimeparser.Parser is configured with. Adapted from go-guerrilla's
// event.go EventHandler, generalized from its fixed Event enum to
// options.WarningCode's seventeen codes.
package mimewarn

import (
	evbus "github.com/asaskevich/EventBus"

	"github.com/mailchannels/gomime/options"
)

// topicPrefix namespaces every warning topic so a Bus can share an
// EventBus instance with unrelated publishers without collision.
const topicPrefix = "gomime:warning:"

func topic(code options.WarningCode) string {
	return topicPrefix + code.String()
}

// allTopic is published, in addition to the per-code topic, for every
// Warning — useful for a single subscriber that wants all of them.
const allTopic = topicPrefix + "*"

// Bus is a thin wrapper around EventBus.EventBus that publishes
// options.Warning values by code.
type Bus struct {
	bus evbus.Bus
}

// New returns a Bus backed by a fresh EventBus instance.
func New() *Bus {
	return &Bus{bus: evbus.New()}
}

// Subscribe registers fn, which must have the signature
// func(options.Warning), to be called whenever a Warning with the given
// code is published.
func (b *Bus) Subscribe(code options.WarningCode, fn func(options.Warning)) error {
	return b.bus.Subscribe(topic(code), fn)
}

// SubscribeAll registers fn to be called for every Warning regardless of
// code.
func (b *Bus) SubscribeAll(fn func(options.Warning)) error {
	return b.bus.Subscribe(allTopic, fn)
}

// Unsubscribe removes a handler previously registered with Subscribe.
func (b *Bus) Unsubscribe(code options.WarningCode, fn func(options.Warning)) error {
	return b.bus.Unsubscribe(topic(code), fn)
}

// Publish fans w out to both its code-specific topic and the catch-all
// topic.
func (b *Bus) Publish(w options.Warning) {
	b.bus.Publish(topic(w.Code), w)
	b.bus.Publish(allTopic, w)
}

// WarningFunc returns an options.WarningFunc that republishes every
// Warning onto b, the glue used to wire a Bus into a mimeparser.Parser's
// options.Options.OnWarning slot.
func (b *Bus) WarningFunc() options.WarningFunc {
	return func(w options.Warning) { b.Publish(w) }
}
