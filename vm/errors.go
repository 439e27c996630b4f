package vm

import "errors"

// Instruction errors surfaced to callers through transaction results. The set
// mirrors the host ledger's own error vocabulary; programs return these
// directly instead of wrapping them.
var (
	ErrNotEnoughAccountKeys     = errors.New("InstrErrNotEnoughAccountKeys")
	ErrInvalidAccountOwner      = errors.New("InstrErrInvalidAccountOwner")
	ErrInvalidAccountData       = errors.New("InstrErrInvalidAccountData")
	ErrInvalidInstructionData   = errors.New("InstrErrInvalidInstructionData")
	ErrMissingRequiredSignature = errors.New("InstrErrMissingRequiredSignature")
	ErrInvalidArgument          = errors.New("InstrErrInvalidArgument")
	ErrUnsupportedProgramID     = errors.New("InstrErrUnsupportedProgramID")
	ErrInsufficientFunds        = errors.New("InstrErrInsufficientFunds")
	ErrAccountBorrowFailed      = errors.New("InstrErrAccountBorrowFailed")
	ErrInvalidSeeds             = errors.New("InstrErrInvalidSeeds")
	ErrPrecompileVerifyFailure  = errors.New("InstrErrPrecompileVerifyFailure")
)
