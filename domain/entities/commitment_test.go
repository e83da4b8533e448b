package entities

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeCommitment_MatchesPackedEncoding(t *testing.T) {
	t.Parallel()

	owner := common.HexToAddress("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4")
	number := uint256.NewInt(100)

	packed := append(owner.Bytes(), common.LeftPadBytes([]byte{100}, 32)...)
	require.Len(t, packed, 52)

	assert.Equal(t, crypto.Keccak256Hash(packed), ComputeCommitment(owner, number))
}

func TestComputeCommitment_BindsOwner(t *testing.T) {
	t.Parallel()

	n := uint256.NewInt(200)
	a := ComputeCommitment(common.HexToAddress("0x01"), n)
	b := ComputeCommitment(common.HexToAddress("0x02"), n)
	assert.NotEqual(t, a, b)
}

func TestFoldReveals(t *testing.T) {
	t.Parallel()

	v := []*uint256.Int{uint256.NewInt(100), uint256.NewInt(200)}

	var buf []byte
	buf = append(buf, common.LeftPadBytes([]byte{100}, 32)...)
	buf = append(buf, common.LeftPadBytes([]byte{200}, 32)...)
	assert.Equal(t, crypto.Keccak256Hash(buf), FoldReveals(v))

	swapped := []*uint256.Int{v[1], v[0]}
	assert.NotEqual(t, FoldReveals(v), FoldReveals(swapped), "fold depends on ticket order")
}

func TestSelectWinningIndex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		seed  common.Hash
		total uint64
		want  uint64
	}{
		{"zero seed", common.Hash{}, 50, 0},
		{"small seed", common.BigToHash(uint256.NewInt(123).ToBig()), 50, 23},
		{"single ticket", common.HexToHash("0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"), 1, 0},
		// 2^256-1 mod 50 = 35
		{"max seed", common.HexToHash("0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"), 50, 35},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SelectWinningIndex(tt.seed, tt.total))
		})
	}
}

func TestParseNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"100", 100, false},
		{" 42 ", 42, false},
		{"0x64", 100, false},
		{"0x0064", 100, false},
		{"0x0", 0, false},
		{"0x", 0, true},
		{"", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			n, err := ParseNumber(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.Uint64())
		})
	}
}
