// Package telemetry collects timings of migration runs. Collected events
// can be summarised locally and, when an endpoint is configured, posted in
// batches as JSON.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/satishbabariya/migrate-go/internal/debug"
	"github.com/satishbabariya/migrate-go/migrate"
)

// Event is one recorded migration or statement
type Event struct {
	EventType string        `json:"event_type"`
	Provider  string        `json:"provider,omitempty"`
	Version   int64         `json:"version"`
	Direction string        `json:"direction"`
	SQL       string        `json:"sql,omitempty"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// MigrationSummary describes a finished migration
type MigrationSummary struct {
	Version    int64         `json:"version" yaml:"version"`
	Name       string        `json:"name,omitempty" yaml:"name,omitempty"`
	Direction  string        `json:"direction" yaml:"direction"`
	Statements int           `json:"statements" yaml:"statements"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
	Error      string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// Summary aggregates a whole run
type Summary struct {
	Migrations []MigrationSummary `json:"migrations" yaml:"migrations"`
	Statements int                `json:"statements" yaml:"statements"`
	Failed     int                `json:"failed" yaml:"failed"`
	Duration   time.Duration      `json:"duration" yaml:"duration"`
}

// Option configures a Collector
type Option func(*Collector)

// WithEndpoint posts events to url
func WithEndpoint(url string) Option {
	return func(c *Collector) {
		c.endpoint = url
	}
}

// WithHTTPClient sets the client used to post events
func WithHTTPClient(client *http.Client) Option {
	return func(c *Collector) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBatchSize sets how many events are buffered before a post
func WithBatchSize(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// Collector is a migrate.Listener that records what ran and how long it
// took.
type Collector struct {
	provider   string
	endpoint   string
	httpClient *http.Client
	batchSize  int
	now        func() time.Time

	mu         sync.Mutex
	pending    []Event
	migrations []MigrationSummary
	statements map[int64]int
	total      int
	wg         sync.WaitGroup
}

var _ migrate.Listener = (*Collector)(nil)

// New creates a collector for a provider
func New(provider string, opts ...Option) *Collector {
	c := &Collector{
		provider:   provider,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		batchSize:  10,
		now:        time.Now,
		statements: make(map[int64]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EndpointFromEnv returns MIGRATE_TELEMETRY_ENDPOINT unless
// MIGRATE_TELEMETRY_DISABLED is set.
func EndpointFromEnv() string {
	if v := os.Getenv("MIGRATE_TELEMETRY_DISABLED"); v == "1" || v == "true" {
		return ""
	}
	return os.Getenv("MIGRATE_TELEMETRY_ENDPOINT")
}

func (c *Collector) BeforeMigration(context.Context, migrate.MigrationEvent) bool {
	return true
}

func (c *Collector) AfterMigration(_ context.Context, e migrate.MigrationEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := MigrationSummary{
		Version:    e.Version,
		Name:       e.Name,
		Direction:  e.Direction.String(),
		Statements: c.statements[e.Version],
		Duration:   e.Duration,
	}
	delete(c.statements, e.Version)
	if e.Err != nil {
		s.Error = e.Err.Error()
	}
	c.migrations = append(c.migrations, s)
	c.record(Event{
		EventType: "migration",
		Version:   e.Version,
		Direction: s.Direction,
		Duration:  e.Duration,
		Error:     s.Error,
	})
}

func (c *Collector) BeforeSQL(context.Context, migrate.SQLEvent) bool {
	return true
}

func (c *Collector) AfterSQL(_ context.Context, e migrate.SQLEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.statements[e.Version]++
	c.total++
	ev := Event{
		EventType: "statement",
		Version:   e.Version,
		Direction: e.Direction.String(),
		SQL:       e.SQL,
		Duration:  e.Duration,
	}
	if e.Err != nil {
		ev.Error = e.Err.Error()
	}
	c.record(ev)
}

// Summary returns what has been collected so far
func (c *Collector) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Summary{
		Migrations: append([]MigrationSummary(nil), c.migrations...),
		Statements: c.total,
	}
	for _, m := range c.migrations {
		if m.Error != "" {
			s.Failed++
		}
		s.Duration += m.Duration
	}
	return s
}

// record buffers ev and posts a batch once it is full. Callers hold mu.
func (c *Collector) record(ev Event) {
	if c.endpoint == "" {
		return
	}
	ev.Provider = c.provider
	ev.Timestamp = c.now()
	c.pending = append(c.pending, ev)
	if len(c.pending) < c.batchSize {
		return
	}

	batch := c.pending
	c.pending = nil
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.send(context.Background(), batch); err != nil {
			debug.Warn("Failed to send telemetry", "error", err)
		}
	}()
}

// Flush posts buffered events and waits for batches in flight
func (c *Collector) Flush(ctx context.Context) error {
	c.mu.Lock()
	batch := c.pending
	c.pending = nil
	c.mu.Unlock()

	c.wg.Wait()
	if len(batch) == 0 {
		return nil
	}
	return c.send(ctx, batch)
}

func (c *Collector) send(ctx context.Context, events []Event) error {
	payload, err := json.Marshal(map[string]any{"events": events})
	if err != nil {
		return fmt.Errorf("failed to encode telemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create telemetry request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "migrate-go")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send telemetry: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("telemetry endpoint returned %s", resp.Status)
	}
	return nil
}
