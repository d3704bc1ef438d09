package structure

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/inodb/pocketcons/internal/residue"
)

// aminoThreeToOne maps standard residue names to one-letter codes.
var aminoThreeToOne = map[string]byte{
	"ALA": 'A', "ARG": 'R', "ASN": 'N', "ASP": 'D', "CYS": 'C',
	"GLU": 'E', "GLN": 'Q', "GLY": 'G', "HIS": 'H', "ILE": 'I',
	"LEU": 'L', "LYS": 'K', "MET": 'M', "PHE": 'F', "PRO": 'P',
	"SER": 'S', "THR": 'T', "TRP": 'W', "TYR": 'Y', "VAL": 'V',
	"SEC": 'U', "PYL": 'O', "UNK": 'X',
}

// modifiedParent maps common modified residues, usually written as HETATM
// records, to the one-letter code of their parent amino acid.
var modifiedParent = map[string]byte{
	"MSE": 'M', "SEP": 'S', "TPO": 'T', "PTR": 'Y', "CSO": 'C',
	"CSD": 'C', "CME": 'C', "MLY": 'K', "M3L": 'K', "KCX": 'K',
	"LLP": 'K', "HYP": 'P', "PCA": 'E', "CGU": 'E', "OCS": 'C',
}

// OneLetterCode returns the one-letter code of a residue name and whether
// the name denotes an amino acid.
func OneLetterCode(name3 string) (byte, bool) {
	name3 = strings.ToUpper(strings.TrimSpace(name3))
	if c, ok := aminoThreeToOne[name3]; ok {
		return c, true
	}
	if c, ok := modifiedParent[name3]; ok {
		return c, true
	}
	return 0, false
}

// ReadFile reads a PDB file. Gzipped files are detected by their magic bytes.
func ReadFile(path string) (*Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdb file: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	var r io.Reader = br
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	s, err := ReadPDB(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	s.Name = filepath.Base(path)
	return s, nil
}

// ReadPDB reads amino-acid residues from the ATOM and HETATM records of the
// first model. Chains appear in the order they are first seen; blank chain
// identifiers are normalized.
func ReadPDB(r io.Reader) (*Structure, error) {
	s := &Structure{}
	chains := make(map[string]*Chain)
	seen := make(map[residue.Key]bool)

	scanner := bufio.NewScanner(r)
	lineNumber := 0
scan:
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "HEADER"):
			if len(line) >= 66 {
				s.ID = strings.TrimSpace(line[62:66])
			}
			continue
		case strings.HasPrefix(line, "ENDMDL"):
			break scan
		case !strings.HasPrefix(line, "ATOM  ") && !strings.HasPrefix(line, "HETATM"):
			continue
		}

		if len(line) < 27 {
			return nil, fmt.Errorf("line %d: short coordinate record", lineNumber)
		}

		name3 := strings.TrimSpace(line[17:20])
		code, ok := OneLetterCode(name3)
		if !ok {
			continue
		}
		if strings.HasPrefix(line, "HETATM") {
			if _, modified := modifiedParent[name3]; !modified {
				continue
			}
		}

		seqNum, err := strconv.Atoi(strings.TrimSpace(line[22:26]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid residue number %q", lineNumber, line[22:26])
		}
		key := residue.NewKey(line[21:22], seqNum, line[26])
		if seen[key] {
			continue
		}
		seen[key] = true

		c, ok := chains[key.Chain]
		if !ok {
			c = &Chain{ID: key.Chain}
			chains[key.Chain] = c
			s.Chains = append(s.Chains, c)
		}
		c.Residues = append(c.Residues, Residue{Key: key, Name3: name3, Code: code})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan pdb: %w", err)
	}

	if len(s.Chains) == 0 {
		return nil, ErrNoAminoAcids
	}
	return s, nil
}
