package infrastructure

import (
	"fmt"

	"lotto/domain/events"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

var subjectsByType = map[events.EventType]string{
	events.EventTypeLotteryCreated:  "lottery.created",
	events.EventTypeTicketPurchased: "lottery.ticket.purchased",
	events.EventTypeLotterySoldOut:  "lottery.sold_out",
	events.EventTypeNumberRevealed:  "lottery.number.revealed",
	events.EventTypeLotteryResolved: "lottery.resolved",
	events.EventTypeRewardClaimed:   "lottery.reward.claimed",
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	if subject, ok := subjectsByType[event.Type()]; ok {
		return subject
	}
	return fmt.Sprintf("lottery.unknown.%s", event.Type())
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	for eventType, s := range subjectsByType {
		if s == subject {
			return eventType
		}
	}
	return events.EventType(subject)
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"lottery.created",
		"lottery.ticket.purchased",
		"lottery.sold_out",
		"lottery.number.revealed",
		"lottery.resolved",
		"lottery.reward.claimed",
	}
}
