package files

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Mode selects how uploads are mapped to destinations.
type Mode string

const (
	// ModeShared writes every upload to the same destination, one upload at a time.
	ModeShared Mode = "shared"
	// ModePerCall writes every upload to its own uniquely named destination.
	ModePerCall Mode = "per_call"
)

// Config holds upload storage settings
type Config struct {
	Dir  string
	Name string
	Mode Mode
}

// DefaultConfig returns the reference storage settings.
func DefaultConfig() Config {
	return Config{
		Dir:  ".",
		Name: "File_Copy.pdf",
		Mode: ModeShared,
	}
}

// Destination is where one upload is written.
type Destination struct {
	// Name is reported back to the client.
	Name string
	// Path is the location on the filesystem.
	Path string

	lock chan struct{}
}

// acquire blocks until the destination may be written. Per-call destinations are
// always free.
func (d *Destination) acquire(ctx context.Context) (func(), error) {
	if d.lock == nil {
		return func() {}, nil
	}
	select {
	case d.lock <- struct{}{}:
		return func() { <-d.lock }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Destinations resolves upload destinations on a filesystem.
type Destinations struct {
	fs   afero.Fs
	cfg  Config
	lock chan struct{}
}

// NewDestinations validates cfg and prepares the destination directory.
func NewDestinations(fs afero.Fs, cfg Config) (*Destinations, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("destination name is required")
	}
	if filepath.Base(cfg.Name) != cfg.Name {
		return nil, fmt.Errorf("destination name must not contain a path: %q", cfg.Name)
	}
	if cfg.Dir == "" {
		cfg.Dir = "."
	}
	switch cfg.Mode {
	case "":
		cfg.Mode = ModeShared
	case ModeShared, ModePerCall:
	default:
		return nil, fmt.Errorf("unknown destination mode %q", cfg.Mode)
	}

	if err := fs.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", cfg.Dir, err)
	}

	return &Destinations{
		fs:   fs,
		cfg:  cfg,
		lock: make(chan struct{}, 1),
	}, nil
}

// Mode returns the configured destination mode.
func (d *Destinations) Mode() Mode {
	return d.cfg.Mode
}

// Next returns the destination for a new upload.
func (d *Destinations) Next() *Destination {
	if d.cfg.Mode == ModePerCall {
		name := uuid.NewString() + "-" + d.cfg.Name
		return &Destination{Name: name, Path: filepath.Join(d.cfg.Dir, name)}
	}
	return &Destination{
		Name: d.cfg.Name,
		Path: filepath.Join(d.cfg.Dir, d.cfg.Name),
		lock: d.lock,
	}
}
