// Package sink isolates the notification delivery capability behind a small
// interface so the alerting engine can be tested with a fake and never talks
// to a delivery platform directly.
package sink

import (
	"context"
	"time"

	"rentdesk/internal/models"
)

// Permission mirrors the three-state notification permission model.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Note is one notification to present to the user. Tag carries the alert id
// so repeated shows of the same id replace in place instead of stacking.
type Note struct {
	Title              string         `json:"title"`
	Body               string         `json:"body"`
	Icon               string         `json:"icon"`
	Tag                string         `json:"tag"`
	RequireInteraction bool           `json:"require_interaction"`
	AutoDismiss        time.Duration  `json:"auto_dismiss"`
	Action             *models.Action `json:"action,omitempty"`
}

// Sink is the notification platform capability injected into the engine.
type Sink interface {
	// Permission returns the current permission state without prompting.
	Permission() Permission
	// RequestPermission prompts once where the transport supports it and
	// returns the resulting state. Implementations never re-prompt after a
	// denial.
	RequestPermission(ctx context.Context) (Permission, error)
	// Show presents one notification.
	Show(ctx context.Context, n Note) error
}
