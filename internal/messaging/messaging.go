// Package messaging is the channel transport shared by every service: a
// fire-and-forget publisher and an acknowledging subscriber over the broker.
//
// Delivery semantics:
//   - Publish is best-effort. Failures are logged and swallowed so a lost
//     audit event never fails the business operation that triggered it.
//   - Subscribe is at-least-once. A record is committed only after the
//     handler returns without error; a crash between processing and commit
//     causes redelivery on the next session.
package messaging

// LogChannel carries audit log events from every service to the logging
// service's sink.
const LogChannel = "LOG_CHANNEL"

// Message is one delivered record, decoupled from the broker client so
// handlers and tests never import it.
type Message struct {
	Topic     string
	Key       []byte
	Value     []byte
	Partition int32
	Offset    int64
}
