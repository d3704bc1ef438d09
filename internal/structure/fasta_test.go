package structure

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/pocketcons/internal/residue"
)

func TestChainFASTA_Wraps(t *testing.T) {
	c := &Chain{ID: "A"}
	for i := range 170 {
		c.Residues = append(c.Residues, Residue{Key: residue.NewKey("A", i+1, 0), Code: 'G'})
	}
	s := &Structure{ID: "4X09", Chains: []*Chain{c}}

	lines := strings.Split(strings.TrimSuffix(s.ChainFASTA(c), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, ">4X09:A", lines[0])
	assert.Len(t, lines[1], 80)
	assert.Len(t, lines[2], 80)
	assert.Len(t, lines[3], 10)
}

func TestWriteFASTA_SkipsEmptyChains(t *testing.T) {
	s, err := ReadPDB(strings.NewReader(samplePDB()))
	require.NoError(t, err)
	s.Chains = append(s.Chains, &Chain{ID: "Z"})

	var buf bytes.Buffer
	require.NoError(t, s.WriteFASTA(&buf))
	assert.Equal(t, ">1ABC:A\nMKTM\n>1ABC:B\nGX\n", buf.String())
}

func TestFASTAFileName(t *testing.T) {
	assert.Equal(t, "1abcB.pdb.seq.fasta", FASTAFileName("/data/1abc.pdb", "B"))
	assert.Equal(t, "1abcA.pdb.gz.seq.fasta", FASTAFileName("1abc.pdb.gz", "A"))
}

func TestSplitExt(t *testing.T) {
	base, ext := SplitExt("pdb1abc.ent.gz")
	assert.Equal(t, "pdb1abc", base)
	assert.Equal(t, ".ent.gz", ext)

	base, ext = SplitExt("1abc.cif")
	assert.Equal(t, "1abc", base)
	assert.Equal(t, ".cif", ext)
}
