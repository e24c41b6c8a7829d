// internal/domain/models/speakup.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxMessageLen is the maximum length of a Speak Up message. Writes past
// this bound are rejected (not truncated) at input time; the server enforces
// the same bound on save.
const MaxMessageLen = 1000

// TypeUnselected is the sentinel the dashboard sends for "no type chosen".
// A draft with this value fails validation on submit.
const TypeUnselected = -1

// Speak Up entry statuses. Status is server-assigned and read-only from the
// dashboard; transitions happen only through the save endpoint's actionBy
// discriminator.
const (
	StatusDraft      = "draft"
	StatusSubmitted  = "submitted"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusCancelled  = "cancelled"
)

// Save actions (the actionBy discriminator on POST speakup/save). Each maps
// to at most one status transition; "save" writes fields without moving the
// workflow.
const (
	ActionSave     = "save"
	ActionSubmit   = "submit"
	ActionCancel   = "cancel"
	ActionProgress = "progress"
	ActionResolve  = "resolve"
)

// Attachment is an optional file reference on a Speak Up entry. The file
// bytes live in file storage; this records where.
type Attachment struct {
	ID          primitive.ObjectID `bson:"id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	StoragePath string             `bson:"storage_path" json:"-"`
	Size        int64              `bson:"size" json:"size"`
	ContentType string             `bson:"content_type" json:"contentType"`
}

// SpeakUpEntry represents one grievance/report entry.
//
// Seq is the numeric id the dashboard displays and keys row expansion on
// (0 = unsaved). The Mongo ObjectID stays internal; outside the service the
// entry is addressed only by its encrypted identifier token.
type SpeakUpEntry struct {
	ID  primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Seq int64              `bson:"seq" json:"id"`

	TypeID      int         `bson:"type_id" json:"typeId"`
	Message     string      `bson:"message" json:"message"` // sanitized before persisting
	IsAnonymous bool        `bson:"is_anonymous" json:"isAnonymous"`
	Attachment  *Attachment `bson:"attachment,omitempty" json:"attachment,omitempty"`

	Status string `bson:"status" json:"status"`

	// ReporterID is omitted for anonymous entries.
	ReporterID *primitive.ObjectID `bson:"reporter_id,omitempty" json:"-"`

	CreatedAt   time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updatedAt"`
	SubmittedAt *time.Time `bson:"submitted_at,omitempty" json:"submittedAt,omitempty"`
	ClosedAt    *time.Time `bson:"closed_at,omitempty" json:"closedAt,omitempty"`
}

// Capabilities are the per-record flags that gate which actions the
// dashboard may offer for a specific entry. They are computed from the
// entry's status plus the caller's role, and the server re-checks them on
// every transition - the flags are advisory for the UI, not the enforcement.
type Capabilities struct {
	CanEdit     bool `json:"canEdit"`
	CanSubmit   bool `json:"canSubmit"`
	CanCancel   bool `json:"canCancel"`
	CanProgress bool `json:"canProgress"`
	CanResolve  bool `json:"canResolve"`
}

// CapabilitiesFor computes the action flags for an entry as seen by a caller
// with the given role.
func CapabilitiesFor(status, role string) Capabilities {
	admin := role == RoleAdmin
	switch status {
	case StatusDraft:
		return Capabilities{CanEdit: true, CanSubmit: true, CanCancel: true}
	case StatusSubmitted:
		return Capabilities{CanCancel: true, CanProgress: admin, CanResolve: admin}
	case StatusInProgress:
		return Capabilities{CanResolve: admin}
	}
	return Capabilities{}
}

// Allows reports whether the capability set permits the given save action.
func (c Capabilities) Allows(action string) bool {
	switch action {
	case ActionSave:
		return c.CanEdit
	case ActionSubmit:
		return c.CanSubmit
	case ActionCancel:
		return c.CanCancel
	case ActionProgress:
		return c.CanProgress
	case ActionResolve:
		return c.CanResolve
	}
	return false
}

// NextStatus returns the status an entry moves to when the given action is
// applied in the given status. ok is false for an illegal transition.
// ActionSave never moves the workflow.
func NextStatus(status, action string) (string, bool) {
	switch action {
	case ActionSave:
		return status, status == StatusDraft
	case ActionSubmit:
		return StatusSubmitted, status == StatusDraft
	case ActionCancel:
		return StatusCancelled, status == StatusDraft || status == StatusSubmitted
	case ActionProgress:
		return StatusInProgress, status == StatusSubmitted
	case ActionResolve:
		return StatusResolved, status == StatusSubmitted || status == StatusInProgress
	}
	return status, false
}
