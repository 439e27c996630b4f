// Package vm is a compact sealevel-style execution harness: a lamport ledger,
// the system program's native transfer, the clock and instructions sysvars,
// and cross-program invocation with program-derived signing authority. It
// exists so on-chain program logic in this repo is executable and testable
// without a validator.
package vm

import (
	"github.com/gagliardetto/solana-go"
)

// Account is the ledger-side state of one address: lamports, owner program
// and opaque data. Accounts holding only native value keep Data empty and
// stay owned by the system program.
type Account struct {
	Key      solana.PublicKey
	Lamports uint64
	Owner    solana.PublicKey
	Data     []byte
}

func (a *Account) clone() *Account {
	c := &Account{
		Key:      a.Key,
		Lamports: a.Lamports,
		Owner:    a.Owner,
	}
	if len(a.Data) > 0 {
		c.Data = append([]byte(nil), a.Data...)
	}
	return c
}

// Ledger maps addresses to account state. A transaction executes against a
// private copy; the copy replaces the ledger only on full success, which is
// what gives instructions their all-or-nothing semantics.
type Ledger struct {
	accounts map[solana.PublicKey]*Account
}

func NewLedger() *Ledger {
	return &Ledger{accounts: make(map[solana.PublicKey]*Account)}
}

// SetAccount installs or replaces account state at the account's own key.
func (l *Ledger) SetAccount(acct *Account) {
	l.accounts[acct.Key] = acct.clone()
}

// Account returns the state at key. Unknown addresses materialize as empty
// system-owned accounts: the first lamport transferred into such an address
// is what brings it to life on the real ledger too.
func (l *Ledger) Account(key solana.PublicKey) *Account {
	if acct, ok := l.accounts[key]; ok {
		return acct
	}
	acct := &Account{Key: key, Owner: solana.SystemProgramID}
	l.accounts[key] = acct
	return acct
}

// Balance returns the lamport balance at key without materializing it.
func (l *Ledger) Balance(key solana.PublicKey) uint64 {
	if acct, ok := l.accounts[key]; ok {
		return acct.Lamports
	}
	return 0
}

func (l *Ledger) clone() *Ledger {
	c := NewLedger()
	for key, acct := range l.accounts {
		c.accounts[key] = acct.clone()
	}
	return c
}

// BorrowedAccount is an instruction's view of one ledger account together
// with the privileges the transaction granted it at this position.
type BorrowedAccount struct {
	acct       *Account
	IsSigner   bool
	IsWritable bool
}

func (b *BorrowedAccount) Key() solana.PublicKey   { return b.acct.Key }
func (b *BorrowedAccount) Owner() solana.PublicKey { return b.acct.Owner }
func (b *BorrowedAccount) Lamports() uint64        { return b.acct.Lamports }
func (b *BorrowedAccount) DataBytes() []byte       { return b.acct.Data }

// IsOwnedBy reports whether the account's owner program equals program.
func (b *BorrowedAccount) IsOwnedBy(program solana.PublicKey) bool {
	return b.acct.Owner == program
}

func (b *BorrowedAccount) setLamports(lamports uint64) error {
	if !b.IsWritable {
		return ErrInvalidArgument
	}
	b.acct.Lamports = lamports
	return nil
}
