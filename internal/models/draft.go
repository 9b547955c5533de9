package models

// TransactionDraft is the unsaved, mutable shape the UI layer edits before a
// transaction is committed. The link allocation planner operates on drafts:
// attaching parents, flipping direction, and redistributing allocations all
// happen here, never on persisted records.
type TransactionDraft struct {
	// ID is set when the draft edits an existing transaction; it is passed
	// to the resolver as the exclusion ID so the record under edit does not
	// count against its own parents.
	ID string

	SpaceID      string
	Kind         Kind
	Amount       int64
	PayerID      string
	Method       SplitMethod
	Splits       map[string]int64
	Participants []string
	Links        []Link
	Category     string
	Note         string
	Timestamp    int64
}

// CounterpartID returns the draft's single counterpart for settlement-like
// drafts, or "" when none is set.
func (d *TransactionDraft) CounterpartID() string {
	if len(d.Participants) == 0 {
		return ""
	}
	return d.Participants[0]
}

// LinkTo returns the draft's link entry pointing at parentID, if any.
func (d *TransactionDraft) LinkTo(parentID string) (Link, bool) {
	for _, l := range d.Links {
		if l.ParentID == parentID {
			return l, true
		}
	}
	return Link{}, false
}

// Transaction converts the draft into a persistable record. The store
// assigns the ID and timestamps when they are unset.
func (d *TransactionDraft) Transaction() *Transaction {
	t := &Transaction{
		ID:           d.ID,
		SpaceID:      d.SpaceID,
		Kind:         d.Kind,
		Amount:       d.Amount,
		PayerID:      d.PayerID,
		Method:       d.Method,
		Splits:       d.Splits,
		Participants: d.Participants,
		Links:        d.Links,
		Category:     d.Category,
		Note:         d.Note,
		Timestamp:    d.Timestamp,
	}
	t.SyncParentIDs()
	return t
}
