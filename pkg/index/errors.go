package index

import "errors"

var (
	// ErrConnection is returned when the index backend is unreachable.
	ErrConnection = errors.New("index connection failed")

	// ErrQuery is returned when a retrieval against the index fails.
	ErrQuery = errors.New("index query failed")

	// ErrUpsert is returned when storing chunks fails.
	ErrUpsert = errors.New("index upsert failed")
)
