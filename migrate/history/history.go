// Package history records which migrations have been applied or reverted.
package history

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/satishbabariya/migrate-go/migrate/executor"
)

// Direction of an executed migration
type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// MarshalText implements encoding.TextMarshaler
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Direction) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "up":
		*d = Up
	case "down":
		*d = Down
	default:
		return fmt.Errorf("invalid direction %q", text)
	}
	return nil
}

// Item records one execution of a migration
type Item struct {
	Version   int64     `json:"version" yaml:"version"`
	Direction Direction `json:"direction" yaml:"direction"`
	Date      time.Time `json:"date" yaml:"date"`
}

// Repository persists history items
type Repository interface {
	// RetrieveHistory returns every recorded item, oldest first
	RetrieveHistory(ctx context.Context, ec *executor.Context) ([]Item, error)
	AddItem(ctx context.Context, ec *executor.Context, item Item) error
	// EnsureSchemaExists creates the history storage if it is missing
	EnsureSchemaExists(ctx context.Context, ec *executor.Context) error
}

// MemoryRepository keeps history in memory
type MemoryRepository struct {
	mu    sync.Mutex
	items []Item
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates a repository holding items
func NewMemoryRepository(items ...Item) *MemoryRepository {
	return &MemoryRepository{items: append([]Item(nil), items...)}
}

func (r *MemoryRepository) RetrieveHistory(context.Context, *executor.Context) ([]Item, error) {
	return r.Items(), nil
}

func (r *MemoryRepository) AddItem(_ context.Context, _ *executor.Context, item Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, item)
	return nil
}

func (r *MemoryRepository) EnsureSchemaExists(context.Context, *executor.Context) error {
	return nil
}

// Items returns a copy of the recorded items
func (r *MemoryRepository) Items() []Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Item(nil), r.items...)
}

type readOnly struct {
	Repository
}

// ReadOnly wraps repo so that reads pass through and writes are dropped.
// What-if runs use it to leave the history untouched.
func ReadOnly(repo Repository) Repository {
	return readOnly{Repository: repo}
}

func (readOnly) AddItem(context.Context, *executor.Context, Item) error {
	return nil
}

func (readOnly) EnsureSchemaExists(context.Context, *executor.Context) error {
	return nil
}
