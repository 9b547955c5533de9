package models

// PrimaryUserID is the reserved participant ID of the ledger owner. Every
// balance is computed from this user's point of view.
const PrimaryUserID = "me"

// DefaultSpaceID is the space transactions land in when none is given.
const DefaultSpaceID = "personal"

// Participant represents a person the primary user shares expenses with.
//
// Participants are never deleted, only archived, because historical
// transactions keep referencing their IDs.
type Participant struct {
	// ID is the unique identifier for the participant. The literal id "me"
	// is reserved for the primary user.
	ID string

	// Name is the display name of the participant.
	Name string

	// Archived hides the participant from pickers without breaking
	// historical references.
	Archived bool

	// CreatedAt is the Unix timestamp when the participant was added.
	CreatedAt int64
}

// IsPrimary reports whether this participant is the ledger owner.
func (p *Participant) IsPrimary() bool {
	return p.ID == PrimaryUserID
}
