package ir

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolicy_AllNames(t *testing.T) {
	tests := []struct {
		name      string
		want      OrderingPolicy
		placement Placement
		sorting   Sorting
	}{
		{"neutral", PolicyNeutral, PlaceArrival, SortArrival},
		{"fLIFO", PolicyFirstLIFO, PlaceFirst, SortLIFO},
		{"lLIFO", PolicyLastLIFO, PlaceLast, SortLIFO},
		{"ff", PolicyFirstFirst, PlaceFirst, SortAscending},
		{"fl", PolicyFirstLast, PlaceFirst, SortDescending},
		{"lf", PolicyLastFirst, PlaceLast, SortAscending},
		{"ll", PolicyLastLast, PlaceLast, SortDescending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePolicy(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p)
			assert.Equal(t, tt.name, p.String())
			assert.Equal(t, tt.placement, p.Placement())
			assert.Equal(t, tt.sorting, p.Sorting())
		})
	}
}

func TestParsePolicy_RejectsUnknown(t *testing.T) {
	for _, name := range []string{"", "FF", "flifo", "fx", "neutral "} {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePolicy(name)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnknownPolicy))
		})
	}
}

func TestPolicyNames_MatchParse(t *testing.T) {
	assert.Len(t, PolicyNames, len(policyNames))
	for _, name := range PolicyNames {
		_, err := ParsePolicy(name)
		assert.NoError(t, err, name)
	}
}
