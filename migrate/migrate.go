// Package migrate applies and reverts versioned schema migrations.
//
// Migrations are registered in a Registry and executed by an Engine, which
// reads the recorded history, plans the steps needed to reach a target
// version and runs each step in its own transaction.
package migrate

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/satishbabariya/migrate-go/migrate/schema"
)

var (
	// ErrCanceled is returned when a listener cancels a migration or statement
	ErrCanceled = errors.New("migration canceled")
	// ErrDuplicateVersion is returned when two migrations share a version
	ErrDuplicateVersion = errors.New("duplicate migration version")
	// ErrInvalidMigration is returned for migrations without version, Up or Down
	ErrInvalidMigration = errors.New("invalid migration")
	// ErrUnknownVersion is returned for versions that are not registered
	ErrUnknownVersion = errors.New("unknown migration version")
)

// Migration is a reversible schema change identified by its version
type Migration struct {
	Version int64                           `validate:"gt=0"`
	Name    string                          `validate:"max=255"`
	Up      func(db *schema.Database) error `validate:"required"`
	Down    func(db *schema.Database) error `validate:"required"`
}

func (m *Migration) String() string {
	if m.Name == "" {
		return strconv.FormatInt(m.Version, 10)
	}
	return fmt.Sprintf("%d %s", m.Version, m.Name)
}

var validate = validator.New()

// Registry holds the available migrations
type Registry struct {
	mu         sync.RWMutex
	migrations map[int64]*Migration
}

// NewRegistry creates a registry holding migrations. It panics on invalid
// or duplicate migrations.
func NewRegistry(migrations ...Migration) *Registry {
	r := &Registry{migrations: make(map[int64]*Migration)}
	r.MustRegister(migrations...)
	return r
}

// Register adds migrations. It stops at the first invalid or duplicate one.
func (r *Registry) Register(migrations ...Migration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.migrations == nil {
		r.migrations = make(map[int64]*Migration)
	}
	for _, m := range migrations {
		if err := validate.Struct(m); err != nil {
			return fmt.Errorf("%w %s: %v", ErrInvalidMigration, m.String(), err)
		}
		if existing, ok := r.migrations[m.Version]; ok {
			return fmt.Errorf("%w: %d is used by %q and %q", ErrDuplicateVersion, m.Version, existing.Name, m.Name)
		}
		r.migrations[m.Version] = &m
	}
	return nil
}

// MustRegister is like Register but panics on error
func (r *Registry) MustRegister(migrations ...Migration) {
	if err := r.Register(migrations...); err != nil {
		panic(err)
	}
}

// Get returns the migration with version v
func (r *Registry) Get(v int64) (*Migration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.migrations[v]
	return m, ok
}

// Versions returns the registered versions in ascending order
func (r *Registry) Versions() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.migrations))
}

// Len returns the number of registered migrations
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.migrations)
}

// All returns a copy of the registered migrations keyed by version
func (r *Registry) All() map[int64]*Migration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.migrations)
}

// Latest returns the highest registered version, or 0
func (r *Registry) Latest() int64 {
	versions := r.Versions()
	if len(versions) == 0 {
		return 0
	}
	return versions[len(versions)-1]
}

// Before returns the version n steps below the latest one. Stepping exactly
// past the oldest migration returns 0.
func (r *Registry) Before(n int) (int64, error) {
	versions := r.Versions()
	switch {
	case n < 0 || n > len(versions):
		return 0, fmt.Errorf("%w: %d versions before latest, only %d registered", ErrUnknownVersion, n, len(versions))
	case n == len(versions):
		return 0, nil
	}
	return versions[len(versions)-1-n], nil
}

const versionLayout = "20060102150405"

// Version encodes a timestamp as YYYYMMDDHHMMSS
func Version(year, month, day, hour, minute, second int) int64 {
	return int64(year)*10_000_000_000 +
		int64(month)*100_000_000 +
		int64(day)*1_000_000 +
		int64(hour)*10_000 +
		int64(minute)*100 +
		int64(second)
}

// VersionOf encodes t as YYYYMMDDHHMMSS
func VersionOf(t time.Time) int64 {
	return Version(t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// VersionTime decodes a YYYYMMDDHHMMSS version. It reports false for
// versions that are not timestamps.
func VersionTime(v int64) (time.Time, bool) {
	s := strconv.FormatInt(v, 10)
	if len(s) != len(versionLayout) {
		return time.Time{}, false
	}
	t, err := time.Parse(versionLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseVersion parses a positive version number. Fourteen digit values
// must be valid YYYYMMDDHHMMSS timestamps.
func ParseVersion(s string) (int64, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid version %q", s)
	}
	if len(s) == len(versionLayout) {
		if _, ok := VersionTime(v); !ok {
			return 0, fmt.Errorf("invalid timestamp version %q", s)
		}
	}
	return v, nil
}
