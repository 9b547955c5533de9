package service

import (
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
)

// linkJSON is the wire form of a parent link.
type linkJSON struct {
	ParentID  string `json:"parent_id"`
	Allocated int64  `json:"allocated"`
}

// transactionJSON is the wire form of a transaction. The same shape serves
// requests (where cached fields are ignored) and responses.
type transactionJSON struct {
	ID           string           `json:"id,omitempty"`
	SpaceID      string           `json:"space_id,omitempty"`
	Kind         string           `json:"kind"`
	Amount       int64            `json:"amount"`
	PayerID      string           `json:"payer_id"`
	Method       string           `json:"method,omitempty"`
	Splits       map[string]int64 `json:"splits,omitempty"`
	Participants []string         `json:"participants"`
	Links        []linkJSON       `json:"links,omitempty"`
	Category     string           `json:"category,omitempty"`
	Note         string           `json:"note,omitempty"`
	NetAmount    int64            `json:"net_amount"`
	HasRefunds   bool             `json:"has_refunds"`
	Timestamp    int64            `json:"timestamp,omitempty"`
	IsDeleted    bool             `json:"is_deleted,omitempty"`
}

func toLinkJSON(links []models.Link) []linkJSON {
	if len(links) == 0 {
		return nil
	}
	out := make([]linkJSON, len(links))
	for i, l := range links {
		out[i] = linkJSON{ParentID: l.ParentID, Allocated: l.Allocated}
	}
	return out
}

func fromLinkJSON(links []linkJSON) []models.Link {
	if len(links) == 0 {
		return nil
	}
	out := make([]models.Link, len(links))
	for i, l := range links {
		out[i] = models.Link{ParentID: l.ParentID, Allocated: l.Allocated}
	}
	return out
}

func toTransactionJSON(t *models.Transaction) transactionJSON {
	return transactionJSON{
		ID:           t.ID,
		SpaceID:      t.SpaceID,
		Kind:         string(t.Kind),
		Amount:       t.Amount,
		PayerID:      t.PayerID,
		Method:       string(t.Method),
		Splits:       t.Splits,
		Participants: t.Participants,
		Links:        toLinkJSON(t.Links),
		Category:     t.Category,
		Note:         t.Note,
		NetAmount:    t.CachedNetAmount,
		HasRefunds:   t.CachedHasRefunds,
		Timestamp:    t.Timestamp,
		IsDeleted:    t.IsDeleted,
	}
}

// draft converts the wire form into the planner's working shape. Cached
// fields never round-trip: the store owns them.
func (j transactionJSON) draft() *models.TransactionDraft {
	return &models.TransactionDraft{
		ID:           j.ID,
		SpaceID:      j.SpaceID,
		Kind:         models.Kind(j.Kind),
		Amount:       j.Amount,
		PayerID:      j.PayerID,
		Method:       models.SplitMethod(j.Method),
		Splits:       j.Splits,
		Participants: j.Participants,
		Links:        fromLinkJSON(j.Links),
		Category:     j.Category,
		Note:         j.Note,
		Timestamp:    j.Timestamp,
	}
}

func fromDraft(d *models.TransactionDraft) transactionJSON {
	return transactionJSON{
		ID:           d.ID,
		SpaceID:      d.SpaceID,
		Kind:         string(d.Kind),
		Amount:       d.Amount,
		PayerID:      d.PayerID,
		Method:       string(d.Method),
		Splits:       d.Splits,
		Participants: d.Participants,
		Links:        toLinkJSON(d.Links),
		Category:     d.Category,
		Note:         d.Note,
		Timestamp:    d.Timestamp,
	}
}

// balancesJSON is the wire form of one aggregation pass.
type balancesJSON struct {
	Net            map[string]int64 `json:"net"`
	TotalPaidByMe  int64            `json:"total_paid_by_me"`
	TotalMyShare   int64            `json:"total_my_share"`
	CategoryTotals map[string]int64 `json:"category_totals"`
	MonthlyIncome  int64            `json:"monthly_income"`
}

func toBalancesJSON(b ledger.Balances) balancesJSON {
	return balancesJSON{
		Net:            b.Net,
		TotalPaidByMe:  b.TotalPaidByMe,
		TotalMyShare:   b.TotalMyShare,
		CategoryTotals: b.CategoryTotals,
		MonthlyIncome:  b.MonthlyIncome,
	}
}

// participantJSON is the wire form of a participant.
type participantJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Archived  bool   `json:"archived,omitempty"`
	CreatedAt int64  `json:"created_at,omitempty"`
}

func toParticipantJSON(p *models.Participant) participantJSON {
	return participantJSON{ID: p.ID, Name: p.Name, Archived: p.Archived, CreatedAt: p.CreatedAt}
}
