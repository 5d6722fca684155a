package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/EventStore/EventStore-Client-Go/v4/esdb"
	"github.com/google/uuid"

	"github.com/gloria-mdrrmo/sigurado/internal/shared/config"
)

// StreamPublisher mirrors domain events into KurrentDB streams for
// downstream consumers. It is registered as a catch-all reactor, so a
// KurrentDB outage only costs the mirror, never the originating operation.
type StreamPublisher struct {
	client *esdb.Client
	prefix string
}

// NewStreamPublisher connects to KurrentDB
func NewStreamPublisher(cfg config.KurrentDBConfig) (*StreamPublisher, error) {
	settings, err := esdb.ParseConnectionString(buildConnectionString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	client, err := esdb.NewClient(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create KurrentDB client: %w", err)
	}

	prefix := cfg.StreamPrefix
	if prefix == "" {
		prefix = "sigurado"
	}
	return &StreamPublisher{client: client, prefix: prefix}, nil
}

// buildConnectionString creates the esdb:// connection string
func buildConnectionString(cfg config.KurrentDBConfig) string {
	var auth string
	if cfg.Username != "" && cfg.Password != "" {
		auth = fmt.Sprintf("%s:%s@", cfg.Username, cfg.Password)
	}

	params := ""
	if cfg.Insecure {
		params = "?tls=false&tlsVerifyCert=false&keepAliveInterval=10000&keepAliveTimeout=10000"
	}

	return fmt.Sprintf("esdb://%s%s:%d%s", auth, cfg.Host, cfg.Port, params)
}

// StreamName maps an event type to its stream: incident.created -> sigurado-incident-created
func (p *StreamPublisher) StreamName(eventType string) string {
	return fmt.Sprintf("%s-%s", p.prefix, strings.ReplaceAll(eventType, ".", "-"))
}

// Handle appends the event to its stream. Its signature matches Handler.
func (p *StreamPublisher) Handle(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	eventID, err := uuid.Parse(event.ID)
	if err != nil {
		eventID = uuid.New()
	}

	_, err = p.client.AppendToStream(ctx, p.StreamName(event.Type), esdb.AppendToStreamOptions{
		ExpectedRevision: esdb.Any{},
	}, esdb.EventData{
		EventID:     eventID,
		EventType:   event.Type,
		ContentType: esdb.ContentTypeJson,
		Data:        data,
	})
	if err != nil {
		return fmt.Errorf("failed to append event to %s: %w", p.StreamName(event.Type), err)
	}
	return nil
}

// Health checks the KurrentDB connection
func (p *StreamPublisher) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	stream, err := p.client.ReadStream(ctx, "$streams", esdb.ReadStreamOptions{
		From:      esdb.Start{},
		Direction: esdb.Forwards,
	}, 1)
	if err != nil {
		return fmt.Errorf("KurrentDB health check failed: %w", err)
	}
	stream.Close()
	return nil
}

// Close closes the KurrentDB connection
func (p *StreamPublisher) Close() {
	if p.client != nil {
		p.client.Close()
	}
}
