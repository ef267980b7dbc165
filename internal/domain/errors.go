package domain

import "errors"

var (
	// ErrEmptyCorpus is returned when there is no usable text to vectorize.
	ErrEmptyCorpus = errors.New("empty corpus")
	// ErrInvalidQuery is returned when a row index is outside the index.
	ErrInvalidQuery = errors.New("invalid query row")
	// ErrTitleNotFound is returned when no catalog item has the requested title.
	ErrTitleNotFound = errors.New("title not found")
	// ErrNotFitted is returned when querying a pipeline before fit completes.
	ErrNotFitted = errors.New("pipeline not fitted")
	// ErrSnapshotNotFound is returned when no snapshot is stored for a fingerprint.
	ErrSnapshotNotFound = errors.New("snapshot not found")
	// ErrSnapshotMismatch is returned when a snapshot was taken for another catalog or metric.
	ErrSnapshotMismatch = errors.New("snapshot does not match catalog")
)
