package geobench

import (
	"errors"

	"github.com/brunobiangulo/geobench/generator"
	"github.com/brunobiangulo/geobench/question"
	"github.com/brunobiangulo/geobench/store"
	"github.com/brunobiangulo/geobench/tableio"
)

var (
	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("geobench: invalid config")

	// ErrNoStore is returned by operations that need a database when
	// no db_path is configured.
	ErrNoStore = errors.New("geobench: no database configured")

	// ErrUnknownDriver is returned for driver names that are not registered.
	ErrUnknownDriver = generator.ErrUnknownDriver

	// ErrMissingColumn is returned when an input file lacks a required column.
	ErrMissingColumn = tableio.ErrMissingColumn

	// ErrUnsupportedFormat is returned for unrecognized table file formats.
	ErrUnsupportedFormat = tableio.ErrUnsupportedFormat

	// ErrNotEnoughPlaces is returned when no distractor can be drawn.
	ErrNotEnoughPlaces = question.ErrNotEnoughPlaces

	// ErrRunNotFound is returned when a run ID is not in the database.
	ErrRunNotFound = store.ErrRunNotFound

	// ErrPlaceNotFound is returned when a place has no stored profile.
	ErrPlaceNotFound = store.ErrPlaceNotFound
)
