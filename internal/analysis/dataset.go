// Package analysis runs the conservation analysis over a dataset of
// structures with predicted pockets and known binding residues.
package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/inodb/pocketcons/internal/conservation"
	"github.com/inodb/pocketcons/internal/pocket"
	"github.com/inodb/pocketcons/internal/scoresource"
)

// DefaultGroundTruth is the file name of a dataset's ground-truth table.
const DefaultGroundTruth = "ranks_rescored.dca4.csv"

const (
	structureExt     = ".pdb"
	bindingSuffix    = "_binding-residues.txt"
	predictionSuffix = "_predictions.csv"
)

// Entry is one structure of a dataset and its companion files.
type Entry struct {
	Name        string // structure file name, e.g. "1abc.pdb"
	Base        string // file name without extension, e.g. "1abc"
	Structure   string
	Binding     string // binding residue ids, one per line
	Predictions string // pocket prediction table
}

// NewEntry derives the companion file paths of a structure file.
func NewEntry(path string) Entry {
	dir, name := filepath.Split(path)
	return Entry{
		Name:        name,
		Base:        strings.TrimSuffix(name, structureExt),
		Structure:   path,
		Binding:     filepath.Join(dir, name+bindingSuffix),
		Predictions: filepath.Join(dir, name+predictionSuffix),
	}
}

// Discover lists the structures of a dataset directory, sorted by name.
func Discover(dir string) ([]Entry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dataset directory: %w", err)
	}

	var names []string
	for _, f := range files {
		if !f.IsDir() && strings.HasSuffix(f.Name(), structureExt) {
			names = append(names, f.Name())
		}
	}
	sort.Strings(names)

	entries := make([]Entry, len(names))
	for i, n := range names {
		entries[i] = NewEntry(filepath.Join(dir, n))
	}
	return entries, nil
}

// LoadGroundTruth reads a ground-truth table from disk.
func LoadGroundTruth(path string) (map[string][]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ground truth: %w", err)
	}
	defer f.Close()

	ranks, err := pocket.LoadTrueRanks(f)
	if err != nil {
		return nil, fmt.Errorf("load ground truth %s: %w", filepath.Base(path), err)
	}
	return ranks, nil
}

// NamingFor returns the score file naming used by a score format:
// ConCavity scores come one file per chain, JSD scores one file per
// structure.
func NamingFor(format conservation.Format) scoresource.Naming {
	if format == conservation.FormatJSD {
		return scoresource.PerStructure
	}
	return scoresource.PerChain
}

// Locator returns the score resolver of a structure by base name.
type Locator interface {
	Resolver(base string) scoresource.Resolver
}

// LocatorFunc adapts a function to the Locator interface.
type LocatorFunc func(base string) scoresource.Resolver

// Resolver calls f.
func (f LocatorFunc) Resolver(base string) scoresource.Resolver {
	return f(base)
}

// DirLocator finds score files in a local directory.
func DirLocator(dir string, naming scoresource.Naming) Locator {
	return LocatorFunc(func(base string) scoresource.Resolver {
		return scoresource.DirResolver{Dir: dir, Base: base, Naming: naming}
	})
}

// BucketLocator finds score files in an S3 bucket.
func BucketLocator(b *scoresource.Bucket, naming scoresource.Naming) Locator {
	return LocatorFunc(func(base string) scoresource.Resolver {
		return b.Resolver(base, naming)
	})
}
