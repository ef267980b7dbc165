// Package catalog loads the movie catalog from CSV.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"

	"recsys/internal/domain"
)

// Columns names the header fields holding the title and the description.
type Columns struct {
	Title       string
	Description string
}

// DefaultColumns matches the Netflix titles export.
func DefaultColumns() Columns {
	return Columns{Title: "Title", Description: "Description"}
}

// Load reads a catalog from a CSV file.
func Load(path string, cols Columns) (domain.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := Read(f, cols)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return c, nil
}

// Read parses CSV with a header row. Both configured columns must be
// present in the header. A row that is too short to reach the description
// column, or whose description is blank, is kept with an empty description
// rather than failing the load: sparse descriptions only yield zero vectors.
// Titles are kept verbatim; descriptions are trimmed.
func Read(r io.Reader, cols Columns) (domain.Catalog, error) {
	if cols.Title == "" || cols.Description == "" {
		return nil, errors.New("title and description column names are required")
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("missing header row")
		}
		return nil, err
	}
	titleIdx, descIdx := -1, -1
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		switch h {
		case cols.Title:
			if titleIdx < 0 {
				titleIdx = i
			}
		case cols.Description:
			if descIdx < 0 {
				descIdx = i
			}
		}
	}
	if titleIdx < 0 {
		return nil, fmt.Errorf("missing title column %q", cols.Title)
	}
	if descIdx < 0 {
		return nil, fmt.Errorf("missing description column %q", cols.Description)
	}

	var out domain.Catalog
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		item := domain.Item{Position: len(out), Title: field(rec, titleIdx)}
		item.Description = strings.TrimSpace(field(rec, descIdx))
		out = append(out, item)
	}
	return out, nil
}

// field returns the raw cell. Titles are matched exactly, so they are never trimmed.
func field(rec []string, idx int) string {
	if idx >= len(rec) {
		return ""
	}
	return rec[idx]
}

// RandomTitle picks a title uniformly at random. A nil rng uses the global source.
func RandomTitle(c domain.Catalog, rng *rand.Rand) (string, error) {
	if len(c) == 0 {
		return "", errors.New("empty catalog")
	}
	var i int
	if rng == nil {
		i = rand.IntN(len(c))
	} else {
		i = rng.IntN(len(c))
	}
	return c[i].Title, nil
}
