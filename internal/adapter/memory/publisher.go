package memory

import (
	"context"
	"encoding/json"
	"sync"
)

// Event is one message accepted by Publisher.
type Event struct {
	Type string
	Body []byte
}

// Publisher records published events as JSON, the way the broker would see them.
type Publisher struct {
	mu     sync.Mutex
	events []Event

	// Err fails every Publish when set.
	Err error
}

func (p *Publisher) Publish(ctx context.Context, eventType string, payload any) error {
	if p.Err != nil {
		return p.Err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.events = append(p.events, Event{Type: eventType, Body: body})
	p.mu.Unlock()
	return nil
}

func (p *Publisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}
