package vm

import (
	"github.com/gagliardetto/solana-go"
)

// Clock is the snapshot of ledger time a transaction executes under.
type Clock struct {
	Slot          uint64
	UnixTimestamp int64
}

// Handler executes one instruction of a native or registered program.
type Handler func(ic *InstructionContext) error

type compiledInstruction struct {
	ProgramID solana.PublicKey
	Accounts  []solana.AccountMeta
	Data      []byte
}

var sysvarOwner = solana.MustPublicKeyFromBase58("Sysvar1111111111111111111111111111111111111")

// Runtime executes transactions against a ledger. The system program and the
// secp256r1 verification program are always installed; custom programs are
// added with Register.
type Runtime struct {
	ledger   *Ledger
	handlers map[solana.PublicKey]Handler
	clock    Clock
}

func NewRuntime(ledger *Ledger) *Runtime {
	rt := &Runtime{
		ledger:   ledger,
		handlers: make(map[solana.PublicKey]Handler),
	}
	rt.Register(solana.SystemProgramID, systemProgramExecute)
	rt.Register(secp256r1ProgramID, secp256r1ProgramExecute)
	return rt
}

// Register installs a handler as the program at the given address.
func (rt *Runtime) Register(program solana.PublicKey, handler Handler) {
	rt.handlers[program] = handler
}

// SetClock fixes the ledger time observed by subsequent transactions.
func (rt *Runtime) SetClock(clock Clock) {
	rt.clock = clock
}

// Balance reports the committed lamport balance at key.
func (rt *Runtime) Balance(key solana.PublicKey) uint64 {
	return rt.ledger.Balance(key)
}

// SetAccount installs committed account state, bypassing execution.
func (rt *Runtime) SetAccount(acct *Account) {
	rt.ledger.SetAccount(acct)
}

// ExecuteTransaction runs the instructions in order against a working copy
// of the ledger. Any error aborts the whole transaction and discards every
// state change; on success the copy is committed atomically.
func (rt *Runtime) ExecuteTransaction(instrs []solana.Instruction) error {
	compiled, err := compileInstructions(instrs)
	if err != nil {
		return err
	}

	// Signer privileges granted by the transaction envelope. The harness
	// trusts the account metas the way a validator trusts the signature set
	// it already checked.
	txSigners := make(map[solana.PublicKey]bool)
	for _, instr := range compiled {
		for _, meta := range instr.Accounts {
			if meta.IsSigner {
				txSigners[meta.PublicKey] = true
			}
		}
	}

	es := &executionState{
		rt:        rt,
		ledger:    rt.ledger.clone(),
		instrs:    compiled,
		txSigners: txSigners,
	}

	for i, instr := range compiled {
		es.refreshInstructionsSysvar(uint16(i))
		if err := es.process(instr, nil); err != nil {
			return err
		}
	}

	rt.ledger = es.ledger
	return nil
}

func compileInstructions(instrs []solana.Instruction) ([]compiledInstruction, error) {
	compiled := make([]compiledInstruction, 0, len(instrs))
	for _, instr := range instrs {
		data, err := instr.Data()
		if err != nil {
			return nil, ErrInvalidInstructionData
		}
		ci := compiledInstruction{ProgramID: instr.ProgramID(), Data: data}
		for _, meta := range instr.Accounts() {
			ci.Accounts = append(ci.Accounts, *meta)
		}
		compiled = append(compiled, ci)
	}
	return compiled, nil
}

// executionState is the per-transaction mutable state: the working ledger
// copy, the compiled instruction list and the envelope signer set.
type executionState struct {
	rt        *Runtime
	ledger    *Ledger
	instrs    []compiledInstruction
	txSigners map[solana.PublicKey]bool
}

func (es *executionState) refreshInstructionsSysvar(current uint16) {
	acct := es.ledger.Account(solana.SysVarInstructionsPubkey)
	acct.Owner = sysvarOwner
	acct.Data = marshalInstructionsSysvar(es.instrs, current)
}

func (es *executionState) process(instr compiledInstruction, derivedSigners map[solana.PublicKey]bool) error {
	handler, ok := es.rt.handlers[instr.ProgramID]
	if !ok {
		return ErrUnsupportedProgramID
	}

	accounts := make([]*BorrowedAccount, 0, len(instr.Accounts))
	for _, meta := range instr.Accounts {
		accounts = append(accounts, &BorrowedAccount{
			acct:       es.ledger.Account(meta.PublicKey),
			IsSigner:   meta.IsSigner && (es.txSigners[meta.PublicKey] || derivedSigners[meta.PublicKey]),
			IsWritable: meta.IsWritable,
		})
	}

	return handler(&InstructionContext{
		exec:      es,
		ProgramID: instr.ProgramID,
		Data:      instr.Data,
		accounts:  accounts,
	})
}

// InstructionContext is everything one instruction invocation can see: its
// program id, payload, account views, the clock, and the ability to invoke
// other programs.
type InstructionContext struct {
	exec      *executionState
	ProgramID solana.PublicKey
	Data      []byte
	accounts  []*BorrowedAccount
}

func (ic *InstructionContext) NumAccounts() int { return len(ic.accounts) }

// Account returns the borrowed account at position i of the instruction's
// account list.
func (ic *InstructionContext) Account(i int) *BorrowedAccount { return ic.accounts[i] }

// Clock returns the ledger time snapshot for the executing transaction.
func (ic *InstructionContext) Clock() Clock { return ic.exec.rt.clock }

// Invoke performs a cross-program invocation carrying only the privileges
// the transaction envelope already granted.
func (ic *InstructionContext) Invoke(instr solana.Instruction) error {
	return ic.InvokeSigned(instr)
}

// InvokeSigned performs a cross-program invocation. Each seed set derives an
// address under the calling program via CreateProgramAddress; the derived
// address is granted signer privilege for the inner instruction only. This
// is how a program exercises authority over accounts it can derive but holds
// no private key for.
func (ic *InstructionContext) InvokeSigned(instr solana.Instruction, seeds ...[][]byte) error {
	var derived map[solana.PublicKey]bool
	if len(seeds) > 0 {
		derived = make(map[solana.PublicKey]bool, len(seeds))
		for _, seedSet := range seeds {
			addr, err := solana.CreateProgramAddress(seedSet, ic.ProgramID)
			if err != nil {
				return ErrInvalidSeeds
			}
			derived[addr] = true
		}
	}

	compiled, err := compileInstructions([]solana.Instruction{instr})
	if err != nil {
		return err
	}
	return ic.exec.process(compiled[0], derived)
}
