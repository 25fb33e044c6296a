// Package notify publishes lifecycle events. Delivery is fire-and-forget:
// a full queue drops the event rather than blocking a request.
package notify

import (
	"time"

	"github.com/google/uuid"
)

// Event types published on the events topic.
const (
	EventAccountInvited  = "account_invited"
	EventAccountVerified = "account_verified"
	EventPasswordReset   = "password_reset_requested"
	EventProjectClosed   = "project_closed"
	EventAccountDeleted  = "account_deleted"
	EventTaskAssigned    = "task_assigned"
)

// Event is a single lifecycle notification.
type Event struct {
	Type       string    `json:"type"`
	TenantID   uuid.UUID `json:"tenant_id"`
	AccountID  uuid.UUID `json:"account_id,omitempty"`
	Subject    string    `json:"subject,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	Token      string    `json:"token,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Notifier accepts events for asynchronous delivery.
type Notifier interface {
	Publish(event Event) error
	Close() error
}

// Noop discards events. Used in tests and when Kafka is not configured.
type Noop struct{}

func (Noop) Publish(Event) error { return nil }
func (Noop) Close() error        { return nil }
