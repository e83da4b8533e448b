package entities

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// ComputeCommitment hashes an owner address and a secret number the same way
// keccak256(abi.encodePacked(address, uint256)) does: 20 address bytes followed
// by the number as a 32-byte big-endian word.
func ComputeCommitment(owner common.Address, number *uint256.Int) common.Hash {
	word := number.Bytes32()
	return crypto.Keccak256Hash(owner.Bytes(), word[:])
}

// FoldReveals combines revealed numbers into a seed. Values must be given in
// ticket index order; the seed is keccak256 over their concatenated 32-byte words.
func FoldReveals(values []*uint256.Int) common.Hash {
	buf := make([]byte, 0, len(values)*32)
	for _, v := range values {
		word := v.Bytes32()
		buf = append(buf, word[:]...)
	}
	return crypto.Keccak256Hash(buf)
}

// ParseNumber parses a secret number given as decimal or 0x-prefixed hex
func ParseNumber(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty number")
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		if len(s) == 2 {
			return nil, fmt.Errorf("invalid hex number %q", s)
		}
		digits := strings.TrimLeft(s[2:], "0")
		if digits == "" {
			return new(uint256.Int), nil
		}
		n, err := uint256.FromHex("0x" + digits)
		if err != nil {
			return nil, fmt.Errorf("invalid hex number %q: %w", s, err)
		}
		return n, nil
	}
	n, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal number %q: %w", s, err)
	}
	return n, nil
}
