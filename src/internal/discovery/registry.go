// FILE: devconsole/src/internal/discovery/registry.go
package discovery

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/lixenwraith/log"
)

var (
	// ErrNotRegistered is returned by Lookup when no process holds the role
	ErrNotRegistered = errors.New("no process registered")

	// ErrAlreadyClaimed is returned by Claim when a live process holds the role
	ErrAlreadyClaimed = errors.New("role already claimed")
)

// Record is the content of a claim file
type Record struct {
	Role    string    `json:"role"`
	Name    string    `json:"name"`
	Addr    string    `json:"addr"`
	PID     int       `json:"pid"`
	ID      string    `json:"id"`
	Started time.Time `json:"started"`
}

// Registry is the shared process registry of one cluster, kept as one claim file per role
// under <base>/<cluster>. Claims are created with O_EXCL so at most one process wins.
type Registry struct {
	dir          string
	probeTimeout time.Duration
	logger       *log.Logger
}

// DefaultDir is the registry base used when none is configured
func DefaultDir() string {
	return filepath.Join(os.TempDir(), "devconsole")
}

// New creates a registry view for a cluster. No filesystem work happens until Claim.
func New(baseDir, cluster string, probeTimeout time.Duration, logger *log.Logger) *Registry {
	if baseDir == "" {
		baseDir = DefaultDir()
	}
	if probeTimeout <= 0 {
		probeTimeout = time.Second
	}
	return &Registry{
		dir:          filepath.Join(baseDir, cluster),
		probeTimeout: probeTimeout,
		logger:       logger,
	}
}

// Dir returns the cluster directory holding claim files
func (r *Registry) Dir() string {
	return r.dir
}

// RecordPath returns the claim file of a role
func (r *Registry) RecordPath(role string) string {
	return filepath.Join(r.dir, role+".json")
}

// Lookup returns the current holder of a role without probing it
func (r *Registry) Lookup(role string) (Record, error) {
	var rec Record
	data, err := os.ReadFile(r.RecordPath(role))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return rec, ErrNotRegistered
		}
		return rec, fmt.Errorf("failed to read claim for %s: %w", role, err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		// A claim being written concurrently reads as absent
		return rec, fmt.Errorf("%w: unreadable claim for %s: %v", ErrNotRegistered, role, err)
	}
	if rec.Addr == "" {
		return rec, fmt.Errorf("%w: claim for %s has no address", ErrNotRegistered, role)
	}
	return rec, nil
}

// Claim atomically registers this process under role at addr.
// When a live holder exists it is returned together with ErrAlreadyClaimed.
// A holder whose address refuses connections is stale; its claim is removed and the claim retried once.
func (r *Registry) Claim(role, addr string) (Record, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return Record{}, fmt.Errorf("failed to create registry directory %s: %w", r.dir, err)
	}

	rec := Record{
		Role:    role,
		Name:    NodeName(role),
		Addr:    addr,
		PID:     os.Getpid(),
		ID:      uuid.NewString(),
		Started: time.Now(),
	}
	path := r.RecordPath(role)

	for attempt := 0; attempt < 2; attempt++ {
		err := writeExclusive(path, rec)
		if err == nil {
			r.logger.Debug("msg", "Role claimed",
				"component", "discovery",
				"role", role,
				"addr", addr,
				"path", path)
			return rec, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return Record{}, err
		}

		holder, lerr := r.Lookup(role)
		if lerr == nil && r.Alive(holder) {
			return holder, ErrAlreadyClaimed
		}

		r.logger.Warn("msg", "Removing stale claim",
			"component", "discovery",
			"role", role,
			"holder", holder.Name,
			"holder_addr", holder.Addr,
			"holder_pid", holder.PID)
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Record{}, fmt.Errorf("failed to remove stale claim %s: %w", path, err)
		}
	}

	return Record{}, ErrAlreadyClaimed
}

// Release removes the claim if it still belongs to rec
func (r *Registry) Release(rec Record) error {
	current, err := r.Lookup(rec.Role)
	if err != nil {
		if errors.Is(err, ErrNotRegistered) {
			return nil
		}
		return err
	}
	if current.ID != rec.ID {
		r.logger.Debug("msg", "Claim held by another process, not releasing",
			"component", "discovery",
			"holder", current.Name,
			"holder_pid", current.PID)
		return nil
	}
	if err := os.Remove(r.RecordPath(rec.Role)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to release claim: %w", err)
	}
	return nil
}

// Alive probes the record's address
func (r *Registry) Alive(rec Record) bool {
	if rec.Addr == "" {
		return false
	}
	conn, err := net.DialTimeout("tcp", rec.Addr, r.probeTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func writeExclusive(path string, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode claim: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write claim %s: %w", path, err)
	}
	return f.Close()
}
