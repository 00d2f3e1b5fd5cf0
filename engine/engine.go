// Package engine is the thin orchestration layer cmd/verifier drives: it
// owns the immutable run configuration and exposes the two operations
// the CLI needs — listing what the catalog knows about, and running a
// chosen subset of it against a dataset.
package engine

import (
	"context"
	"fmt"

	"github.com/thechriswalker/evverify/catalog"
	"github.com/thechriswalker/evverify/dataset"
	"github.com/thechriswalker/evverify/report"
	"github.com/thechriswalker/evverify/run"
	"github.com/thechriswalker/evverify/scheduler"
)

// Config is the single immutable configuration constructed once at the
// CLI boundary and passed down by value, matching the design note
// "shared-state in config parsing": no package-level mutable
// configuration anywhere in this module. It is scheduler.Config under
// the hood since the scheduler is what actually consumes every field.
type Config = scheduler.Config

// Driver is the entry point cmd/verifier calls into; it exists mainly to
// give the CLI layer one small surface instead of reaching into catalog
// and scheduler directly.
type Driver struct {
	cfg Config
}

func New(cfg Config) *Driver {
	return &Driver{cfg: cfg}
}

// ListVerifications returns every descriptor known for phase, sorted by
// id, including NotImplemented stubs — the CLI's `list` subcommand
// renders this directly.
func (d *Driver) ListVerifications(phase catalog.Phase) ([]catalog.Descriptor, error) {
	cat, err := catalog.Build()
	if err != nil {
		return nil, fmt.Errorf("engine: building catalog: %w", err)
	}
	return cat.ByPhase(phase), nil
}

// RunAll opens the dataset at root and runs every non-excluded,
// implemented verification for phase against it, returning the
// completed run.Information.
func (d *Driver) RunAll(ctx context.Context, rootPath string, phase catalog.Phase, excluded []string, sinks []report.Sink) (*run.Information, error) {
	root, err := dataset.Open(rootPath)
	if err != nil {
		return nil, fmt.Errorf("engine: opening dataset %q: %w", rootPath, err)
	}
	if root.Phase() != phase {
		return nil, fmt.Errorf("engine: dataset %q is a %s dataset, not %s", rootPath, root.Phase(), phase)
	}
	return scheduler.RunAll(ctx, root, phase, excluded, sinks, d.cfg)
}
