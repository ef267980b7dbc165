// Package store persists fitted pipeline snapshots in Badger so a restart
// against an unchanged catalog can skip fitting.
package store

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"recsys/internal/domain"
)

// Store is a Badger-backed snapshot store.
type Store struct {
	db *badger.DB
}

// record is the meta entry of a snapshot; rows live under their own keys.
type record struct {
	Fingerprint string    `json:"fingerprint"`
	Metric      string    `json:"metric"`
	Vocabulary  []string  `json:"vocabulary"`
	IDF         []float64 `json:"idf"`
	Rows        int       `json:"rows"`
}

// Open opens (or creates) a store in dir.
func Open(dir string) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a store that lives only as long as the process.
func OpenInMemory() (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func prefix(fp string) string  { return "snapshot:" + fp + ":" }
func metaKey(fp string) []byte { return []byte(prefix(fp) + "meta") }
func rowKey(fp string, i int) []byte {
	return []byte(fmt.Sprintf("%srow:%08d", prefix(fp), i))
}

// Save writes snap, replacing any snapshot with the same fingerprint.
func (s *Store) Save(snap *domain.Snapshot) error {
	if snap == nil || snap.Fingerprint == "" {
		return errors.New("save snapshot: missing fingerprint")
	}
	if err := s.Delete(snap.Fingerprint); err != nil {
		return err
	}
	meta, err := json.Marshal(record{
		Fingerprint: snap.Fingerprint,
		Metric:      snap.Metric,
		Vocabulary:  snap.Vocabulary,
		IDF:         snap.IDF,
		Rows:        len(snap.Rows),
	})
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for i, row := range snap.Rows {
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("save snapshot row %d: %w", i, err)
		}
		if err := wb.Set(rowKey(snap.Fingerprint, i), data); err != nil {
			return fmt.Errorf("save snapshot row %d: %w", i, err)
		}
	}
	// meta goes last so a partially written snapshot is never loadable
	if err := wb.Set(metaKey(snap.Fingerprint), meta); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return wb.Flush()
}

// Load returns the snapshot stored under fingerprint, or
// domain.ErrSnapshotNotFound.
func (s *Store) Load(fingerprint string) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKey(fingerprint))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domain.ErrSnapshotNotFound
		}
		if err != nil {
			return err
		}
		var rec record
		if err := item.Value(func(v []byte) error { return json.Unmarshal(v, &rec) }); err != nil {
			return fmt.Errorf("decode snapshot meta: %w", err)
		}

		rows := make([][]float64, rec.Rows)
		for i := range rows {
			item, err := txn.Get(rowKey(fingerprint, i))
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: row %d missing", domain.ErrSnapshotNotFound, i)
			}
			if err != nil {
				return err
			}
			if err := item.Value(func(v []byte) error { return json.Unmarshal(v, &rows[i]) }); err != nil {
				return fmt.Errorf("decode snapshot row %d: %w", i, err)
			}
		}
		snap = &domain.Snapshot{
			Fingerprint: rec.Fingerprint,
			Metric:      rec.Metric,
			Vocabulary:  rec.Vocabulary,
			IDF:         rec.IDF,
			Rows:        rows,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Delete removes every key of the snapshot. Deleting a missing snapshot is not an error.
func (s *Store) Delete(fingerprint string) error {
	p := []byte(prefix(fingerprint))
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return fmt.Errorf("delete snapshot: %w", err)
		}
	}
	return wb.Flush()
}
