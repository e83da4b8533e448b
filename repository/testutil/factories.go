package testutil

import (
	"time"

	"lotto/domain/entities"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// TestAddress returns a deterministic address for a small test id
func TestAddress(id byte) common.Address {
	return common.BytesToAddress([]byte{0xAA, id})
}

// CreateTestLottery creates an unsaved commit-reveal lottery
func CreateTestLottery(creator common.Address, total, price uint64) *entities.Lottery {
	lottery, err := entities.NewLottery(creator, entities.LotteryConfig{
		TicketsTotal: total,
		TicketPrice:  price,
		EntropyMode:  entities.EntropyCommitReveal,
	})
	if err != nil {
		panic(err)
	}
	return lottery
}

// CreateTestTicket creates an unsaved ticket committing owner to number
func CreateTestTicket(lotteryID int64, index uint64, owner common.Address, number uint64) *entities.Ticket {
	return &entities.Ticket{
		LotteryID:   lotteryID,
		Index:       index,
		Owner:       owner,
		Commitment:  entities.ComputeCommitment(owner, uint256.NewInt(number)),
		PurchasedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}
