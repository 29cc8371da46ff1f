// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

package disambig_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chorostat/chorostat/pkg/disambig"
)

/*
TestTitle_Sequence verifies the rename sequence for colliding titles.
*/
func TestTitle_Sequence(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		attempt int
		want    string
	}{
		{"attempt_zero_unchanged", "Median Income", 0, "Median Income"},
		{"first_collision", "Median Income", 1, "Median Income(1)"},
		{"second_collision", "Median Income", 2, "Median Income(2)"},
		{"third_collision", "Median Income", 3, "Median Income(3)"},
		{"double_digit_counter", "Median Income", 12, "Median Income(12)"},
		{"negative_attempt_unchanged", "Median Income", -1, "Median Income"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, disambig.Title(tt.base, tt.attempt))
		})
	}
}

/*
TestTitle_NeverReusesEarlierSuffix checks that sequential attempts are all distinct.
*/
func TestTitle_NeverReusesEarlierSuffix(t *testing.T) {
	seen := map[string]bool{}
	for attempt := 0; attempt <= 50; attempt++ {
		candidate := disambig.Title("Uninsured Rate", attempt)
		assert.False(t, seen[candidate], "candidate %q repeated", candidate)
		seen[candidate] = true
	}
}

/*
TestBase verifies that trailing suffixes are stripped and plain titles pass through.
*/
func TestBase(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"plain_title", "Poverty Rate", "Poverty Rate"},
		{"suffixed_title", "Poverty Rate(1)", "Poverty Rate"},
		{"double_digit_suffix", "Poverty Rate(42)", "Poverty Rate"},
		{"parens_inside_title_kept", "Rate (age-adjusted) by county", "Rate (age-adjusted) by county"},
		{"empty_string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, disambig.Base(tt.title))
		})
	}
}
