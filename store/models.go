// Package store contains the GORM-backed SQLite models the vault client
// persists: one row per submitted vault transaction, so deposits and
// withdrawals can be audited and resubmitted after expiry without re-deriving
// anything from chain state.
package store

import (
	"gorm.io/gorm"
)

// Transaction kinds.
const (
	KindDeposit  = "deposit"
	KindWithdraw = "withdraw"
)

// Submission statuses.
const (
	StatusSubmitted = "submitted"
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
)

// VaultTransaction records one deposit or withdrawal submitted by this
// client.
type VaultTransaction struct {
	gorm.Model
	TxHash string `gorm:"uniqueIndex"` // Transaction signature, base58
	Kind   string `gorm:"index"`       // "deposit" or "withdraw"
	Vault  string `gorm:"index"`       // Derived vault address, base58
	Payer  string // Payer address, base58
	Amount uint64 // Lamports moved; for withdrawals, the drained balance if known
	Expiry int64  // Authorization expiry (unix seconds); zero for deposits
	Status string `gorm:"index"` // "submitted", "confirmed" or "failed"
}
