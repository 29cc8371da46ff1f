// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

/*
Package disambig implements the title-rename policy used when a save collides
with the unique (title, owner) constraint on maps and datasets.

The sequence produced for a base title T is:

	T, T(1), T(2), T(3), ...

Each step is derived from the original base title, never from the previously
suffixed value, so the sequence stays well-formed past single-digit counters.
*/
package disambig

import (
	"fmt"
	"regexp"
)

// suffixPattern matches a trailing "(N)" disambiguation suffix.
var suffixPattern = regexp.MustCompile(`\((\d+)\)$`)

// Title returns the candidate title for the given attempt number.
//
// Attempt 0 is the caller-supplied title unchanged; attempt n >= 1 appends
// the "(n)" suffix to the base.
func Title(base string, attempt int) string {
	if attempt <= 0 {
		return base
	}
	return fmt.Sprintf("%s(%d)", base, attempt)
}

// Base strips a trailing "(N)" suffix, if present, returning the undecorated
// title. Re-saving an already-disambiguated title restarts the sequence from
// its base rather than stacking suffixes.
func Base(title string) string {
	return suffixPattern.ReplaceAllString(title, "")
}
