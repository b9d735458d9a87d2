package services

import "errors"

// Fund service errors
var (
	// ErrUnknownFundType is returned for a fund type absent from the dataset.
	ErrUnknownFundType = errors.New("unknown fund type")

	// ErrDatasetNotLoaded is returned by queries and readiness checks when no
	// dataset could be loaded at startup.
	ErrDatasetNotLoaded = errors.New("dataset not loaded")
)
