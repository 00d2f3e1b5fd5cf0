// Package catalog is the static registry of verifications (C3): for each
// id, its metadata and a constructor returning an executable body that
// implements verify.Func's contract. Built once via Build(), grounded on
// the "dispatch table" design note and on blockchain.BlockValidator's
// dispatch-by-hint switch in the teacher — no inheritance, no virtual
// class hierarchy, just a literal table of constructors per id.
package catalog

import (
	"fmt"
	"sort"

	"github.com/thechriswalker/evverify/dataset"
	"github.com/thechriswalker/evverify/verify"
)

// Phase mirrors dataset.Phase but is the catalog's own vocabulary so this
// package does not need to import dataset for anything but the type used
// by verify.Func bodies.
type Phase = dataset.Phase

const (
	PhaseSetup = dataset.PhaseSetup
	PhaseTally = dataset.PhaseTally
)

// Category is one of the five recurring verification shapes from §4.4.
type Category int

const (
	Completeness Category = iota
	Authentication
	Consistency
	Integrity
	Evidence
)

func (c Category) String() string {
	switch c {
	case Authentication:
		return "Authentication"
	case Consistency:
		return "Consistency"
	case Integrity:
		return "Integrity"
	case Evidence:
		return "Evidence"
	default:
		return "Completeness"
	}
}

// Status is a descriptor's lifecycle state (§3). NotImplemented is
// terminal and set at catalog build time; the others are mutated only by
// the scheduler.
type Status int

const (
	Ready Status = iota
	Running
	Success
	FinishedWithFailures
	FinishedWithErrors
	NotImplemented
)

// String preserves the exact "Not Implemented" spelling the GUI driver
// boundary depends on (§9, Open Question a) — every other status uses its
// Go identifier verbatim, matching how the console front end already
// renders status names.
func (s Status) String() string {
	switch s {
	case Running:
		return "Running"
	case Success:
		return "Success"
	case FinishedWithFailures:
		return "FinishedWithFailures"
	case FinishedWithErrors:
		return "FinishedWithErrors"
	case NotImplemented:
		return "Not Implemented"
	default:
		return "Ready"
	}
}

// Descriptor is one catalog entry: id, human name, phase, category,
// dependencies, and (when implemented) the executable body.
type Descriptor struct {
	ID           string
	Name         string
	Phase        Phase
	Category     Category
	Dependencies []string
	Status       Status
	Run          verify.Func
}

// Catalog is the full, validated registry, built once at process start.
type Catalog struct {
	byID []Descriptor
}

// Build constructs the static catalog and fails only on the one hard-fail
// path permitted by §7: a dependency cycle or a dependency naming an
// unknown id.
func Build() (*Catalog, error) {
	entries := append(append([]Descriptor{}, setupDescriptors...), tallyDescriptors...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	c := &Catalog{byID: entries}
	if err := c.checkDependencies(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) checkDependencies() error {
	known := make(map[string]bool, len(c.byID))
	for _, d := range c.byID {
		known[d.ID] = true
	}
	for _, d := range c.byID {
		for _, dep := range d.Dependencies {
			if !known[dep] {
				return fmt.Errorf("catalog: %s depends on unknown verification %s", d.ID, dep)
			}
		}
	}
	// cycle detection via DFS over the dependency graph.
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(c.byID))
	byID := make(map[string]Descriptor, len(c.byID))
	for _, d := range c.byID {
		byID[d.ID] = d
	}
	var visit func(id string, path []string) error
	visit = func(id string, path []string) error {
		switch state[id] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("catalog: dependency cycle detected: %v -> %s", path, id)
		}
		state[id] = visiting
		for _, dep := range byID[id].Dependencies {
			if err := visit(dep, append(path, id)); err != nil {
				return err
			}
		}
		state[id] = done
		return nil
	}
	for _, d := range c.byID {
		if err := visit(d.ID, nil); err != nil {
			return err
		}
	}
	return nil
}

// All returns every descriptor, sorted by id.
func (c *Catalog) All() []Descriptor {
	out := make([]Descriptor, len(c.byID))
	copy(out, c.byID)
	return out
}

// ByPhase returns every descriptor for the given phase, sorted by id.
func (c *Catalog) ByPhase(phase Phase) []Descriptor {
	var out []Descriptor
	for _, d := range c.byID {
		if d.Phase == phase {
			out = append(out, d)
		}
	}
	return out
}

// ByID returns a single descriptor, or false if no such id is registered.
func (c *Catalog) ByID(id string) (Descriptor, bool) {
	for _, d := range c.byID {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Filter yields descriptorsByPhase(phase) − excluded (§4.3), dropping
// NotImplemented ids unconditionally — they never occupy a wave.
func (c *Catalog) Filter(phase Phase, excluded []string) []Descriptor {
	excludedSet := make(map[string]bool, len(excluded))
	for _, id := range excluded {
		excludedSet[id] = true
	}
	var out []Descriptor
	for _, d := range c.ByPhase(phase) {
		if d.Status == NotImplemented || excludedSet[d.ID] {
			continue
		}
		out = append(out, d)
	}
	return out
}
