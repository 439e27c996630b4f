package vm

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// System program instruction types, in declaration order of the native
// program. Only Transfer is executable here; the rest are recognized so
// decoding failures stay distinguishable from unsupported operations.
const (
	systemInstrCreateAccount = iota
	systemInstrAssign
	systemInstrTransfer
)

type systemInstrTransferData struct {
	Lamports uint64
}

func (instr *systemInstrTransferData) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	var err error
	instr.Lamports, err = decoder.ReadUint64(bin.LE)
	return err
}

func (instr *systemInstrTransferData) MarshalWithEncoder(encoder *bin.Encoder) error {
	err := encoder.WriteUint32(systemInstrTransfer, bin.LE)
	if err != nil {
		return err
	}
	return encoder.WriteUint64(instr.Lamports, bin.LE)
}

// NewTransferInstruction builds a native transfer moving lamports from one
// account to another. The from account must sign, either directly or through
// a derived-authority seed set on InvokeSigned.
func NewTransferInstruction(from, to solana.PublicKey, lamports uint64) solana.Instruction {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	transfer := systemInstrTransferData{Lamports: lamports}
	if err := transfer.MarshalWithEncoder(enc); err != nil {
		panic("encoding a transfer cannot fail")
	}

	return solana.NewInstruction(
		solana.SystemProgramID,
		solana.AccountMetaSlice{
			{PublicKey: from, IsSigner: true, IsWritable: true},
			{PublicKey: to, IsSigner: false, IsWritable: true},
		},
		buf.Bytes(),
	)
}

// systemProgramExecute dispatches a system program invocation.
func systemProgramExecute(ic *InstructionContext) error {
	dec := bin.NewBinDecoder(ic.Data)
	instrType, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return ErrInvalidInstructionData
	}

	switch instrType {
	case systemInstrTransfer:
		var transfer systemInstrTransferData
		if err := transfer.UnmarshalWithDecoder(dec); err != nil {
			return ErrInvalidInstructionData
		}
		return systemTransfer(ic, transfer.Lamports)
	default:
		return ErrInvalidInstructionData
	}
}

// systemTransfer debits the first account and credits the second. The source
// must be a data-free, system-owned signer with a sufficient balance.
func systemTransfer(ic *InstructionContext, lamports uint64) error {
	if ic.NumAccounts() < 2 {
		return ErrNotEnoughAccountKeys
	}
	from := ic.Account(0)
	to := ic.Account(1)

	if !from.IsSigner {
		return ErrMissingRequiredSignature
	}
	if len(from.DataBytes()) != 0 {
		return ErrInvalidArgument
	}
	if !from.IsOwnedBy(solana.SystemProgramID) {
		return ErrInvalidAccountOwner
	}
	if from.Lamports() < lamports {
		return ErrInsufficientFunds
	}

	if err := from.setLamports(from.Lamports() - lamports); err != nil {
		return err
	}
	return to.setLamports(to.Lamports() + lamports)
}
