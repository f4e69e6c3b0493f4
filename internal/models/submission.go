package models

import "time"

// SubmissionRecord is the persisted bookkeeping entry for one orchestration
// run: which state it ended in, its outcome kind, and the transaction hash
// when one was produced. Records are append-only audit data; the draft
// itself is never persisted.
type SubmissionRecord struct {
	ID          string          `gorm:"primaryKey" json:"id"`
	OwnerWallet string          `gorm:"index" json:"owner_wallet"`
	NftID       string          `gorm:"index" json:"nft_id"`
	Title       string          `json:"title"`
	State       SubmissionState `gorm:"not null" json:"state"`
	OutcomeKind OutcomeKind     `json:"outcome_kind"`
	TxHash      string          `json:"tx_hash"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
