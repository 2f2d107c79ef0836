// Package broadcaster drains the event outbox into Kafka. Each pending
// event is marked SENT, published, then marked ACKED, so a crash
// between steps leads to a re-send rather than a lost event.
package broadcaster
