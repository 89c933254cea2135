package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"ai-answer-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Events land on "events.<TYPE>" so consumers can bind per event type.
const (
	streamName     = "EVENTS"
	subjectPrefix  = "events."
	streamSubjects = subjectPrefix + ">"
)

// Publisher emits domain events onto NATS JetStream. Construction fails
// only when the broker is unreachable at startup; the caller then keeps a
// nil publisher and skips publishing entirely.
type Publisher struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func NewPublisher(url string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	p := &Publisher{nc: nc, js: js}
	p.ensureStream()
	return p, nil
}

// ensureStream creates or updates the events stream. Failure is logged,
// not returned: the broker may still be starting up, and Publish surfaces
// real errors per event anyway.
func (p *Publisher) ensureStream() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := p.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      streamName,
		Subjects:  []string{streamSubjects},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
	})
	if err != nil {
		log.Printf("Warn: ensure stream %q: %v", streamName, err)
	}
}

// Publish sends the event's payload to its type subject.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	data, err := json.Marshal(event.Payload())
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	subject := subjectPrefix + event.EventType()
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
