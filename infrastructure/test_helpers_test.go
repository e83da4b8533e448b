package infrastructure

import (
	"context"
	"sync"

	"lotto/domain/events"
)

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu              sync.Mutex
	PublishedEvents []events.Event
	PublishError    error
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PublishError != nil {
		return m.PublishError
	}
	m.PublishedEvents = append(m.PublishedEvents, event)
	return nil
}

// fakeMessageBus records raw messages by subject
type fakeMessageBus struct {
	mu       sync.Mutex
	subjects []string
	messages [][]byte
	err      error
}

func (f *fakeMessageBus) Publish(ctx context.Context, subject string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.messages = append(f.messages, data)
	return nil
}
