package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"recsys/internal/domain"
)

func sampleSnapshot(fp string) *domain.Snapshot {
	return &domain.Snapshot{
		Fingerprint: fp,
		Metric:      "cosine",
		Vocabulary:  []string{"adventur", "hero", "space"},
		IDF:         []float64{1.28, 1.28, 1.0},
		Rows: [][]float64{
			{1, 0.5},
			{0.5, 1},
		},
	}
}

func TestSaveLoad(t *testing.T) {
	req := require.New(t)
	s, err := Open(t.TempDir())
	req.NoError(err)
	defer s.Close()

	want := sampleSnapshot("abc")
	req.NoError(s.Save(want))

	got, err := s.Load("abc")
	req.NoError(err)
	req.Equal(want, got)
}

func TestLoad_NotFound(t *testing.T) {
	req := require.New(t)
	s, err := OpenInMemory()
	req.NoError(err)
	defer s.Close()

	_, err = s.Load("missing")
	req.ErrorIs(err, domain.ErrSnapshotNotFound)
}

func TestSave_ReplacesSameFingerprint(t *testing.T) {
	req := require.New(t)
	s, err := OpenInMemory()
	req.NoError(err)
	defer s.Close()

	req.NoError(s.Save(sampleSnapshot("abc")))
	smaller := sampleSnapshot("abc")
	smaller.Rows = [][]float64{{1}}
	req.NoError(s.Save(smaller))

	got, err := s.Load("abc")
	req.NoError(err)
	req.Len(got.Rows, 1)
}

func TestDelete(t *testing.T) {
	req := require.New(t)
	s, err := OpenInMemory()
	req.NoError(err)
	defer s.Close()

	req.NoError(s.Save(sampleSnapshot("abc")))
	req.NoError(s.Save(sampleSnapshot("abd")))
	req.NoError(s.Delete("abc"))

	_, err = s.Load("abc")
	req.ErrorIs(err, domain.ErrSnapshotNotFound)
	_, err = s.Load("abd")
	req.NoError(err)

	req.NoError(s.Delete("never-saved"))
}

func TestSave_RequiresFingerprint(t *testing.T) {
	req := require.New(t)
	s, err := OpenInMemory()
	req.NoError(err)
	defer s.Close()

	req.Error(s.Save(nil))
	req.Error(s.Save(&domain.Snapshot{}))
}
