// Package messaging provides a broker-agnostic API for publishing messages.
//
// Business code depends on Publisher so the broker (Kafka, NATS, NSQ, Google
// Pub/Sub, or none) can be swapped through configuration without touching use
// cases. The service only produces events, so no consumer side is exposed.
package messaging
