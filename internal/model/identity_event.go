// Package model defines domain entities for the application.
package model

import "slices"

// IdentityEventType represents identity-provider sync event types.
type IdentityEventType string

const (
	IdentityUserCreated IdentityEventType = "user.created"
	IdentityUserUpdated IdentityEventType = "user.updated"
)

// ValidIdentityEventTypes contains all event types this service consumes.
var ValidIdentityEventTypes = []IdentityEventType{
	IdentityUserCreated,
	IdentityUserUpdated,
}

// IsValidIdentityEventType checks if an event type is consumed.
func IsValidIdentityEventType(et IdentityEventType) bool {
	return slices.Contains(ValidIdentityEventTypes, et)
}

// IdentityEvent is the envelope the identity provider delivers on its
// webhook. Unknown event types are acknowledged and skipped.
type IdentityEvent struct {
	ID   string              `json:"id"`
	Type IdentityEventType   `json:"type"`
	Data IdentityUserPayload `json:"data"`
}

// IdentityUserPayload is the user snapshot carried by sync events.
type IdentityUserPayload struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}
