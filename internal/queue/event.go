// Package queue defines message payloads exchanged over the message broker
// and the publisher/consumer pair that carries verification mails.
package queue

// VerificationQueueName is the durable queue carrying verification requests.
const VerificationQueueName = "verification.requested"

// VerificationRequestedEvent is published after an account is registered.
// The consumer mails Code to Email.
type VerificationRequestedEvent struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	RequestedAt string `json:"requested_at"`
}
