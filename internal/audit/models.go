// Package audit records who decided what across the residency workflows.
// Delivery is best effort: requests never block on the audit pipeline.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action names what happened. Keep these stable; they end up in long-lived
// audit rows and downstream consumers.
type Action string

const (
	ActionLogin            Action = "login"
	ActionLoginFailed      Action = "login_failed"
	ActionLogout           Action = "logout"
	ActionAdminRegistered  Action = "admin_registered"
	ActionHeadAdded        Action = "head_added"
	ActionHeadEdited       Action = "head_edited"
	ActionHeadRemoved      Action = "head_removed"
	ActionHeadRestored     Action = "head_restored"
	ActionMemberSubmitted  Action = "member_submitted"
	ActionMemberDecision   Action = "member_decision"
	ActionMemberEdited     Action = "member_edited"
	ActionMemberRemoved    Action = "member_removed"
	ActionMemberRestored   Action = "member_restored"
	ActionIDRequested      Action = "id_requested"
	ActionIDResubmitted    Action = "id_resubmitted"
	ActionIDDecision       Action = "id_decision"
	ActionCertRequested    Action = "certificate_requested"
	ActionCertDecision     Action = "certificate_decision"
	ActionDocumentAttached Action = "document_attached"
)

// Event is emitted from workflow services to capture a decision or mutation.
// Transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID `json:"id"`
	At        time.Time `json:"at"`
	Actor     uuid.UUID `json:"actor"`
	ActorRole string    `json:"actor_role"`
	Action    Action    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  uuid.UUID `json:"entity_id"`
	Outcome   string    `json:"outcome"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	ClientIP  string    `json:"client_ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
}
