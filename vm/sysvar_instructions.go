package vm

import (
	"bytes"
	"encoding/binary"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// The instructions sysvar serializes every instruction of the executing
// transaction into one account so programs can inspect their siblings.
// Layout:
//
//	u16 LE  instruction count
//	u16 LE  byte offset of each instruction entry (count entries)
//	entries, each:
//	    u16 LE  account count
//	    per account: 1 flag byte (bit0 signer, bit1 writable) + 32-byte key
//	    32-byte program id
//	    u16 LE  data length
//	    data bytes
//	u16 LE  index of the currently executing instruction (trailing)
const (
	sysvarAcctFlagSigner   = 0x01
	sysvarAcctFlagWritable = 0x02
)

// IntrospectedInstruction is one sibling instruction read back out of the
// instructions sysvar. Read-only; never persisted.
type IntrospectedInstruction struct {
	ProgramID solana.PublicKey
	Accounts  []solana.AccountMeta
	Data      []byte
}

func marshalInstructionsSysvar(instrs []compiledInstruction, current uint16) []byte {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)

	_ = enc.WriteUint16(uint16(len(instrs)), bin.LE)

	// Offsets are relative to the start of the account data, so the entry
	// region begins after the count and the offset table itself.
	offset := 2 + 2*len(instrs)
	for _, instr := range instrs {
		_ = enc.WriteUint16(uint16(offset), bin.LE)
		offset += 2 + len(instr.Accounts)*(1+solana.PublicKeyLength) +
			solana.PublicKeyLength + 2 + len(instr.Data)
	}

	for _, instr := range instrs {
		_ = enc.WriteUint16(uint16(len(instr.Accounts)), bin.LE)
		for _, meta := range instr.Accounts {
			var flags byte
			if meta.IsSigner {
				flags |= sysvarAcctFlagSigner
			}
			if meta.IsWritable {
				flags |= sysvarAcctFlagWritable
			}
			_ = enc.WriteUint8(flags)
			_ = enc.WriteBytes(meta.PublicKey[:], false)
		}
		_ = enc.WriteBytes(instr.ProgramID[:], false)
		_ = enc.WriteUint16(uint16(len(instr.Data)), bin.LE)
		_ = enc.WriteBytes(instr.Data, false)
	}

	_ = enc.WriteUint16(current, bin.LE)
	return buf.Bytes()
}

// LoadCurrentIndex reads the trailing index of the executing instruction.
func LoadCurrentIndex(data []byte) (uint16, error) {
	if len(data) < 2 {
		return 0, ErrInvalidInstructionData
	}
	return binary.LittleEndian.Uint16(data[len(data)-2:]), nil
}

// LoadInstructionAt deserializes the instruction entry at index from raw
// instructions-sysvar account data. Every length and offset is treated as
// untrusted.
func LoadInstructionAt(data []byte, index int) (*IntrospectedInstruction, error) {
	if len(data) < 2 {
		return nil, ErrInvalidInstructionData
	}
	count := int(binary.LittleEndian.Uint16(data))
	if index < 0 || index >= count {
		return nil, ErrInvalidInstructionData
	}

	offsetPos := 2 + 2*index
	if offsetPos+2 > len(data) {
		return nil, ErrInvalidInstructionData
	}
	entryOffset := int(binary.LittleEndian.Uint16(data[offsetPos:]))
	if entryOffset >= len(data) {
		return nil, ErrInvalidInstructionData
	}

	dec := bin.NewBinDecoder(data[entryOffset:])

	numAccounts, err := dec.ReadUint16(bin.LE)
	if err != nil {
		return nil, ErrInvalidInstructionData
	}

	instr := &IntrospectedInstruction{}
	for i := 0; i < int(numAccounts); i++ {
		flags, err := dec.ReadUint8()
		if err != nil {
			return nil, ErrInvalidInstructionData
		}
		keyBytes, err := dec.ReadBytes(solana.PublicKeyLength)
		if err != nil {
			return nil, ErrInvalidInstructionData
		}
		instr.Accounts = append(instr.Accounts, solana.AccountMeta{
			PublicKey:  solana.PublicKeyFromBytes(keyBytes),
			IsSigner:   flags&sysvarAcctFlagSigner != 0,
			IsWritable: flags&sysvarAcctFlagWritable != 0,
		})
	}

	programID, err := dec.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return nil, ErrInvalidInstructionData
	}
	instr.ProgramID = solana.PublicKeyFromBytes(programID)

	dataLen, err := dec.ReadUint16(bin.LE)
	if err != nil {
		return nil, ErrInvalidInstructionData
	}
	instrData, err := dec.ReadBytes(int(dataLen))
	if err != nil {
		return nil, ErrInvalidInstructionData
	}
	instr.Data = instrData

	return instr, nil
}

// LoadInstructionRelative resolves the instruction at the given offset from
// the currently executing one, e.g. +1 for the immediate successor.
func LoadInstructionRelative(data []byte, offset int) (*IntrospectedInstruction, error) {
	current, err := LoadCurrentIndex(data)
	if err != nil {
		return nil, err
	}
	return LoadInstructionAt(data, int(current)+offset)
}
