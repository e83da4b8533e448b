package entities

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// SelectWinningIndex maps a 256-bit seed onto a ticket index in [0, ticketsTotal)
func SelectWinningIndex(seed common.Hash, ticketsTotal uint64) uint64 {
	if ticketsTotal == 0 {
		return 0
	}
	s := new(uint256.Int).SetBytes32(seed[:])
	return new(uint256.Int).Mod(s, uint256.NewInt(ticketsTotal)).Uint64()
}

// OwnerAt returns the owner of the ticket with the given index
func OwnerAt(tickets []*Ticket, index uint64) (common.Address, bool) {
	for _, t := range tickets {
		if t.Index == index {
			return t.Owner, true
		}
	}
	return common.Address{}, false
}
