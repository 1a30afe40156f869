// Package vault stores supplementary document uploads. Records are
// append-only: nothing in the system updates or deletes one.
package vault

import (
	"time"

	"github.com/google/uuid"
)

// Document ties a stored file reference to a head and optionally a member.
type Document struct {
	ID         uuid.UUID
	HeadID     uuid.UUID
	MemberID   *uuid.UUID
	Label      string
	FileRef    string
	UploadedAt time.Time
}
