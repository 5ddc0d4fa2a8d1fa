package penalty

import "errors"

// ErrDatasetMissing is returned when a penalty dataset file does not exist.
var ErrDatasetMissing = errors.New("penalty dataset file missing")

// ErrEmptyDataset is returned when both dataset files parse to zero records.
var ErrEmptyDataset = errors.New("no penalty records parsed from datasets")

// ErrInvalidInput is returned for caller errors: empty query,
// non-positive top_k, or an unknown category.
var ErrInvalidInput = errors.New("invalid input")

// ErrInitialization is returned to every waiter of a warmup attempt
// that failed to reach the ready state.
var ErrInitialization = errors.New("penalty embedding initialization failed")
