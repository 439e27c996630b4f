package vault

import (
	"bytes"
	"encoding/binary"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/r1vault/r1vault/secp256r1"
	"github.com/r1vault/r1vault/vm"
)

// AuthorizingKeyLength is the size of a compressed secp256r1 public key:
// one parity prefix byte plus the 32-byte x coordinate.
const AuthorizingKeyLength = secp256r1.PublicKeyLength

const (
	depositPayloadLen  = AuthorizingKeyLength + 8
	withdrawPayloadLen = 1
)

// DepositInstructionData is the Deposit payload after the discriminator:
// the authorizing public key followed by the amount in lamports.
type DepositInstructionData struct {
	Pubkey [AuthorizingKeyLength]byte
	Amount uint64
}

func (instr *DepositInstructionData) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	pubkey, err := decoder.ReadBytes(AuthorizingKeyLength)
	if err != nil {
		return err
	}
	copy(instr.Pubkey[:], pubkey)

	instr.Amount, err = decoder.ReadUint64(bin.LE)
	return err
}

func (instr *DepositInstructionData) MarshalWithEncoder(encoder *bin.Encoder) error {
	err := encoder.WriteUint8(DepositDiscriminator)
	if err != nil {
		return err
	}
	err = encoder.WriteBytes(instr.Pubkey[:], false)
	if err != nil {
		return err
	}
	return encoder.WriteUint64(instr.Amount, bin.LE)
}

// parseDepositData rejects any payload that is not exactly a key and an
// amount; partial parses of untrusted bytes are never attempted.
func parseDepositData(data []byte) (*DepositInstructionData, error) {
	if len(data) != depositPayloadLen {
		return nil, vm.ErrInvalidInstructionData
	}
	instr := new(DepositInstructionData)
	if err := instr.UnmarshalWithDecoder(bin.NewBinDecoder(data)); err != nil {
		return nil, vm.ErrInvalidInstructionData
	}
	return instr, nil
}

// WithdrawInstructionData is the Withdraw payload after the discriminator:
// only the derivation bump. The rest of the withdrawal's authority comes
// from the introspected signature instruction.
type WithdrawInstructionData struct {
	Bump uint8
}

func parseWithdrawData(data []byte) (*WithdrawInstructionData, error) {
	if len(data) != withdrawPayloadLen {
		return nil, vm.ErrInvalidInstructionData
	}
	return &WithdrawInstructionData{Bump: data[0]}, nil
}

// NewDepositInstruction builds a Deposit moving amount lamports from payer
// into the vault derived from the authorizing key.
func NewDepositInstruction(payer, vaultAddr solana.PublicKey, pubkey [AuthorizingKeyLength]byte, amount uint64) solana.Instruction {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	deposit := DepositInstructionData{Pubkey: pubkey, Amount: amount}
	if err := deposit.MarshalWithEncoder(enc); err != nil {
		panic("encoding a deposit cannot fail")
	}

	return solana.NewInstruction(
		ProgramID,
		solana.AccountMetaSlice{
			{PublicKey: payer, IsSigner: true, IsWritable: true},
			{PublicKey: vaultAddr, IsSigner: false, IsWritable: true},
			{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		},
		buf.Bytes(),
	)
}

// NewWithdrawInstruction builds a Withdraw draining the vault to payer. The
// transaction must carry the matching secp256r1 verification instruction
// immediately after this one.
func NewWithdrawInstruction(payer, vaultAddr solana.PublicKey, bump uint8) solana.Instruction {
	return solana.NewInstruction(
		ProgramID,
		solana.AccountMetaSlice{
			{PublicKey: payer, IsSigner: true, IsWritable: true},
			{PublicKey: vaultAddr, IsSigner: false, IsWritable: true},
			{PublicKey: solana.SysVarInstructionsPubkey, IsSigner: false, IsWritable: false},
			{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		},
		[]byte{WithdrawDiscriminator, bump},
	)
}

// AuthorizationMessage is the byte string a withdrawal signature must cover:
// the claimed payer address followed by the expiry as little-endian signed
// seconds. Binding the payer into the message keeps a captured signature
// from being replayed by a different submitter.
func AuthorizationMessage(payer solana.PublicKey, expiry int64) []byte {
	msg := make([]byte, 0, solana.PublicKeyLength+8)
	msg = append(msg, payer[:]...)
	msg = binary.LittleEndian.AppendUint64(msg, uint64(expiry))
	return msg
}
