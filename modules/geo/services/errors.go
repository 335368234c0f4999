package services

import "github.com/go-faster/errors"

var (
	// ErrSourceNotFound is returned when an explicitly requested input does
	// not exist.
	ErrSourceNotFound = errors.New("source not found")
	// ErrCityDumpMissing is returned when no local GeoNames dump is available.
	ErrCityDumpMissing = errors.New("city dump not found")
)
