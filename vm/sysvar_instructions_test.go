package vm

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInstructions(t *testing.T) []compiledInstruction {
	t.Helper()
	keyA, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	keyB, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	return []compiledInstruction{
		{
			ProgramID: solana.SystemProgramID,
			Accounts: []solana.AccountMeta{
				{PublicKey: keyA.PublicKey(), IsSigner: true, IsWritable: true},
				{PublicKey: keyB.PublicKey(), IsWritable: true},
			},
			Data: []byte{2, 0, 0, 0, 1, 2, 3, 4, 5, 6, 7, 8},
		},
		{
			ProgramID: secp256r1ProgramID,
			Accounts:  nil,
			Data:      []byte{0xAA, 0xBB},
		},
	}
}

func TestInstructionsSysvarRoundTrip(t *testing.T) {
	instrs := testInstructions(t)
	data := marshalInstructionsSysvar(instrs, 1)

	current, err := LoadCurrentIndex(data)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), current)

	for i, want := range instrs {
		got, err := LoadInstructionAt(data, i)
		require.NoError(t, err)
		assert.Equal(t, want.ProgramID, got.ProgramID)
		assert.Equal(t, want.Data, got.Data)
		require.Len(t, got.Accounts, len(want.Accounts))
		for j, meta := range want.Accounts {
			assert.Equal(t, meta.PublicKey, got.Accounts[j].PublicKey)
			assert.Equal(t, meta.IsSigner, got.Accounts[j].IsSigner)
			assert.Equal(t, meta.IsWritable, got.Accounts[j].IsWritable)
		}
	}
}

func TestLoadInstructionRelative(t *testing.T) {
	instrs := testInstructions(t)
	data := marshalInstructionsSysvar(instrs, 0)

	next, err := LoadInstructionRelative(data, 1)
	require.NoError(t, err)
	assert.Equal(t, secp256r1ProgramID, next.ProgramID)

	self, err := LoadInstructionRelative(data, 0)
	require.NoError(t, err)
	assert.Equal(t, solana.SystemProgramID, self.ProgramID)

	_, err = LoadInstructionRelative(data, 2)
	require.ErrorIs(t, err, ErrInvalidInstructionData)

	_, err = LoadInstructionRelative(data, -1)
	require.ErrorIs(t, err, ErrInvalidInstructionData)
}

func TestLoadInstructionAtRejections(t *testing.T) {
	instrs := testInstructions(t)
	data := marshalInstructionsSysvar(instrs, 0)

	t.Run("index past the end", func(t *testing.T) {
		_, err := LoadInstructionAt(data, len(instrs))
		require.ErrorIs(t, err, ErrInvalidInstructionData)
	})

	t.Run("negative index", func(t *testing.T) {
		_, err := LoadInstructionAt(data, -1)
		require.ErrorIs(t, err, ErrInvalidInstructionData)
	})

	t.Run("empty data", func(t *testing.T) {
		_, err := LoadInstructionAt(nil, 0)
		require.ErrorIs(t, err, ErrInvalidInstructionData)

		_, err = LoadCurrentIndex(nil)
		require.ErrorIs(t, err, ErrInvalidInstructionData)
	})

	t.Run("entry truncated", func(t *testing.T) {
		_, err := LoadInstructionAt(data[:len(data)-10], 1)
		require.ErrorIs(t, err, ErrInvalidInstructionData)
	})
}
