package scoresource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScoreExt is the extension of conservation score files.
const ScoreExt = ".scores"

// Naming selects how score files are named relative to a structure.
type Naming int

const (
	// PerChain names one file per chain: <base>_<chain>.scores.
	PerChain Naming = iota
	// PerStructure names one file for all chains: <base>.scores.
	PerStructure
)

// FileName returns the score file name for a structure base name and chain.
func (n Naming) FileName(base, chainID string) string {
	if n == PerChain {
		return fmt.Sprintf("%s_%s%s", base, chainID, ScoreExt)
	}
	return base + ScoreExt
}

// DirResolver resolves score files next to a structure in a directory.
// A gzipped variant (<name>.gz) is used when the plain file is absent.
type DirResolver struct {
	Dir    string
	Base   string // structure file name without extension
	Naming Naming
}

// Resolve returns the score file of a chain if it exists.
func (d DirResolver) Resolve(_ context.Context, chainID string) (Source, bool, error) {
	name := d.Naming.FileName(d.Base, chainID)
	for _, candidate := range []string{name, name + ".gz"} {
		f := File{Path: filepath.Join(d.Dir, candidate)}
		if f.Exists() {
			return f, true, nil
		}
	}
	return nil, false, nil
}

// ListDir returns the score files in a directory, sorted by name.
func ListDir(dir string) ([]Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read score directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n := e.Name()
		if strings.HasSuffix(n, ScoreExt) || strings.HasSuffix(n, ScoreExt+".gz") {
			names = append(names, n)
		}
	}
	sort.Strings(names)

	sources := make([]Source, len(names))
	for i, n := range names {
		sources[i] = File{Path: filepath.Join(dir, n)}
	}
	return sources, nil
}
