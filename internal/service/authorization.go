package service

import "github.com/homehub/homehub-api/internal/models"

// AuthorizationGate decides which mutations a requester may perform on a
// message. Posting and marking read are open to any known member, so the only
// rule here is sender-owned deletion.
type AuthorizationGate struct{}

// NewAuthorizationGate constructs the gate.
func NewAuthorizationGate() *AuthorizationGate {
	return &AuthorizationGate{}
}

// CanDelete reports whether the requester may delete the message.
func (g *AuthorizationGate) CanDelete(message *models.Message, requesterID int64) bool {
	return message != nil && message.SenderID == requesterID
}
