// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

package geocode

import "context"

// Repository defines the data access contract for geographic reference data.
type Repository interface {

	/*
		Resolve returns the geo code matching a free-text label.

		Description: Case-insensitive equality against FIPS code, name, or
		abbreviation, in that priority order. Absence is not an error: the
		boolean result is false and the code is the zero value.

		Parameters:
		  - context: context.Context
		  - label: string

		Returns:
		  - GeoCode: Matched code (zero value when not found)
		  - bool: Whether a match was found
		  - error: Database retrieval failures only
	*/
	Resolve(context context.Context, label string) (GeoCode, bool, error)

	/*
		List returns all geo codes at the given level, ordered by name.

		Parameters:
		  - context: context.Context
		  - level: Level

		Returns:
		  - []GeoCode: Reference rows
		  - error: Database retrieval failures
	*/
	List(context context.Context, level Level) ([]GeoCode, error)
}
