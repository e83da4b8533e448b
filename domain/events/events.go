package events

import (
	"github.com/ethereum/go-ethereum/common"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeLotteryCreated  EventType = "lottery_created"
	EventTypeTicketPurchased EventType = "ticket_purchased"
	EventTypeLotterySoldOut  EventType = "lottery_sold_out"
	EventTypeNumberRevealed  EventType = "number_revealed"
	EventTypeLotteryResolved EventType = "lottery_resolved"
	EventTypeRewardClaimed   EventType = "reward_claimed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
	// AggregateID is the lottery the event belongs to
	AggregateID() int64
}

// LotteryCreatedEvent is emitted when a lottery opens for sale
type LotteryCreatedEvent struct {
	LotteryID    int64          `json:"lottery_id"`
	Creator      common.Address `json:"creator"`
	TicketsTotal uint64         `json:"tickets_total"`
	TicketPrice  uint64         `json:"ticket_price"`
	EntropyMode  string         `json:"entropy_mode"`
}

func (e LotteryCreatedEvent) Type() EventType   { return EventTypeLotteryCreated }
func (e LotteryCreatedEvent) AggregateID() int64 { return e.LotteryID }

// TicketPurchasedEvent is emitted for every sold ticket
type TicketPurchasedEvent struct {
	LotteryID   int64          `json:"lottery_id"`
	Owner       common.Address `json:"owner"`
	TicketIndex uint64         `json:"ticket_index"`
	Price       uint64         `json:"price"`
}

func (e TicketPurchasedEvent) Type() EventType   { return EventTypeTicketPurchased }
func (e TicketPurchasedEvent) AggregateID() int64 { return e.LotteryID }

// LotterySoldOutEvent is emitted when the last ticket is sold
type LotterySoldOutEvent struct {
	LotteryID     int64   `json:"lottery_id"`
	Pot           uint64  `json:"pot"`
	EntropyAnchor *uint64 `json:"entropy_anchor,omitempty"`
}

func (e LotterySoldOutEvent) Type() EventType   { return EventTypeLotterySoldOut }
func (e LotterySoldOutEvent) AggregateID() int64 { return e.LotteryID }

// NumberRevealedEvent is emitted when an owner opens their commitments.
// Number is the decimal form of the revealed value.
type NumberRevealedEvent struct {
	LotteryID     int64          `json:"lottery_id"`
	Owner         common.Address `json:"owner"`
	Number        string         `json:"number"`
	TicketIndexes []uint64       `json:"ticket_indexes"`
}

func (e NumberRevealedEvent) Type() EventType   { return EventTypeNumberRevealed }
func (e NumberRevealedEvent) AggregateID() int64 { return e.LotteryID }

// LotteryResolvedEvent is emitted once the winner is fixed
type LotteryResolvedEvent struct {
	LotteryID    int64          `json:"lottery_id"`
	Seed         common.Hash    `json:"seed"`
	WinningIndex uint64         `json:"winning_index"`
	Winner       common.Address `json:"winner"`
}

func (e LotteryResolvedEvent) Type() EventType   { return EventTypeLotteryResolved }
func (e LotteryResolvedEvent) AggregateID() int64 { return e.LotteryID }

// RewardClaimedEvent is emitted when the winner withdraws the pot
type RewardClaimedEvent struct {
	LotteryID int64          `json:"lottery_id"`
	Winner    common.Address `json:"winner"`
	Amount    uint64         `json:"amount"`
}

func (e RewardClaimedEvent) Type() EventType   { return EventTypeRewardClaimed }
func (e RewardClaimedEvent) AggregateID() int64 { return e.LotteryID }
