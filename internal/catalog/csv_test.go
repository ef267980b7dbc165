package catalog

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recsys/internal/domain"
)

const sample = `Show_Id,Title,Type,Description
s1,Stranger Things,TV Show,"A boy vanishes, and a small town uncovers a mystery."
s2,The Chef,Movie,
s3,Short Row
s4,"Quoted, Title",Movie,Heist crew plans one last job.
`

func TestRead(t *testing.T) {
	c, err := Read(strings.NewReader(sample), DefaultColumns())
	require.NoError(t, err)
	require.Len(t, c, 4)

	assert.Equal(t, domain.Item{Position: 0, Title: "Stranger Things", Description: "A boy vanishes, and a small town uncovers a mystery."}, c[0])
	assert.Equal(t, "", c[1].Description)
	assert.Equal(t, "Short Row", c[2].Title)
	assert.Equal(t, "", c[2].Description)
	assert.Equal(t, "Quoted, Title", c[3].Title)
	assert.Equal(t, 3, c[3].Position)
}

func TestRead_KeepsTitleWhitespace(t *testing.T) {
	in := "Title,Description\n\" Alien \",\"  In space no one can hear you scream  \"\n"
	c, err := Read(strings.NewReader(in), DefaultColumns())
	require.NoError(t, err)
	require.Len(t, c, 1)
	assert.Equal(t, " Alien ", c[0].Title)
	assert.Equal(t, "In space no one can hear you scream", c[0].Description)
}

func TestRead_CustomColumns(t *testing.T) {
	in := "name,overview\nAlien,In space no one can hear you scream\n"
	c, err := Read(strings.NewReader(in), Columns{Title: "name", Description: "overview"})
	require.NoError(t, err)
	require.Len(t, c, 1)
	assert.Equal(t, "Alien", c[0].Title)
}

func TestRead_MissingColumns(t *testing.T) {
	_, err := Read(strings.NewReader("Title,Plot\nA,b\n"), DefaultColumns())
	require.ErrorContains(t, err, "Description")

	_, err = Read(strings.NewReader("Name,Description\nA,b\n"), DefaultColumns())
	require.ErrorContains(t, err, "Title")

	_, err = Read(strings.NewReader(""), DefaultColumns())
	require.Error(t, err)

	_, err = Read(strings.NewReader("Title,Description\n"), Columns{})
	require.Error(t, err)
}

func TestRead_BOMHeader(t *testing.T) {
	c, err := Read(strings.NewReader("\ufeffTitle,Description\nA,space\n"), DefaultColumns())
	require.NoError(t, err)
	require.Len(t, c, 1)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "titles.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	c, err := Load(path, DefaultColumns())
	require.NoError(t, err)
	assert.Len(t, c, 4)

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"), DefaultColumns())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRandomTitle(t *testing.T) {
	c := domain.Catalog{{Title: "A"}, {Title: "B"}, {Title: "C"}}
	rng := rand.New(rand.NewPCG(1, 2))
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		title, err := RandomTitle(c, rng)
		require.NoError(t, err)
		seen[title] = true
	}
	assert.Len(t, seen, 3)

	title, err := RandomTitle(c, nil)
	require.NoError(t, err)
	assert.Contains(t, []string{"A", "B", "C"}, title)

	_, err = RandomTitle(nil, rng)
	require.Error(t, err)
}
