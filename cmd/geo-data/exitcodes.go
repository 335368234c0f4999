package main

import (
	"errors"

	"github.com/iota-uz/geodata/modules/geo/domain/hierarchy"
	"github.com/iota-uz/geodata/modules/geo/infrastructure/csvio"
	"github.com/iota-uz/geodata/modules/geo/infrastructure/legacysql"
	"github.com/iota-uz/geodata/modules/geo/services"
	"github.com/iota-uz/geodata/pkg/artifact"
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

const (
	exitOK         = 0
	exitValidation = 2
	exitUsage      = 3
	exitIO         = 4
)

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return 1
}

// classify attaches an exit code to a service error: malformed input is a
// validation failure, absent input a usage failure, anything else I/O.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return err
	}
	var formatErr *legacysql.FormatError
	var schemaErr *csvio.SchemaError
	switch {
	case errors.As(err, &formatErr), errors.As(err, &schemaErr), errors.Is(err, hierarchy.ErrInvalidHierarchy):
		return withCode(exitValidation, err)
	case errors.Is(err, services.ErrSourceNotFound), errors.Is(err, services.ErrCityDumpMissing),
		errors.Is(err, artifact.ErrNotFound):
		return withCode(exitUsage, err)
	default:
		return withCode(exitIO, err)
	}
}
