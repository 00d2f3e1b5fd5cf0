// Package dataset is the typed, lazily-loaded, memoized view over an
// extracted election-artifact directory tree (C1). It owns the directory
// schema and per-file lifetime only; the byte-level parsing of the
// cryptographic payloads it hands back is delegated to crypto/elgamal and
// crypto/mixnet, and the on-disk layout discovery / zip extraction that
// produces the root directory in the first place is out of scope (§1) —
// the caller hands us an already-extracted directory.
package dataset

import (
	"fmt"
	"os"
	"path/filepath"
)

// Phase identifies which half of an election's artifacts a dataset root
// holds. A root never has both: it is either a Setup dataset or a Tally
// dataset, always alongside a context sub-tree.
type Phase int

const (
	PhaseSetup Phase = iota
	PhaseTally
)

func (p Phase) String() string {
	if p == PhaseTally {
		return "Tally"
	}
	return "Setup"
}

const (
	dirContext = "context"
	dirSetup   = "setup"
	dirTally   = "tally"
)

// Root is an opened dataset root. It is immutable for the lifetime of a
// run and safe to share read-only across every concurrently running
// verification (§3, §4.1 invariant i).
type Root struct {
	path  string
	phase Phase

	context slot[*ContextData]
	setup   slot[*SetupData]
	tally   slot[*TallyData]
}

// Open opens root read-only and determines its phase from which of
// setup/ or tally/ is present alongside context/. It does not eagerly
// parse anything — every accessor below is lazy.
func Open(root string) (*Root, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("opening dataset root %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dataset root %q is not a directory", root)
	}
	if _, err := os.Stat(filepath.Join(root, dirContext)); err != nil {
		return nil, fmt.Errorf("dataset root %q has no context/ subdirectory: %w", root, err)
	}
	hasSetup := dirExists(filepath.Join(root, dirSetup))
	hasTally := dirExists(filepath.Join(root, dirTally))
	switch {
	case hasSetup && hasTally:
		return nil, fmt.Errorf("dataset root %q has both setup/ and tally/ subdirectories", root)
	case hasSetup:
		return &Root{path: root, phase: PhaseSetup}, nil
	case hasTally:
		return &Root{path: root, phase: PhaseTally}, nil
	default:
		return nil, fmt.Errorf("dataset root %q has neither setup/ nor tally/ subdirectory", root)
	}
}

func dirExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

// Path is the filesystem root this view was opened on.
func (r *Root) Path() string { return r.path }

// Phase reports whether this is a Setup or Tally dataset.
func (r *Root) Phase() Phase { return r.phase }

func (r *Root) contextPath() string { return filepath.Join(r.path, dirContext) }
func (r *Root) setupPath() string   { return filepath.Join(r.path, dirSetup) }
func (r *Root) tallyPath() string   { return filepath.Join(r.path, dirTally) }
