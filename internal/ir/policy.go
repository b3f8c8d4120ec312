package ir

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPolicy is returned by ParsePolicy for names outside the
// closed set of ordering policies.
var ErrUnknownPolicy = errors.New("unknown ordering policy")

// OrderingPolicy selects how landmark candidates of a round are assigned
// positions.
type OrderingPolicy int

const (
	// PolicyNeutral keeps arrival order; every candidate occupies a slot.
	PolicyNeutral OrderingPolicy = iota
	// PolicyFirstLIFO places landmarks first, in reverse arrival order.
	PolicyFirstLIFO
	// PolicyLastLIFO places landmarks after non-landmarks, in reverse arrival order.
	PolicyLastLIFO
	// PolicyFirstFirst places landmarks first, lowest level first.
	PolicyFirstFirst
	// PolicyFirstLast places landmarks first, highest level first.
	PolicyFirstLast
	// PolicyLastFirst places landmarks after non-landmarks, lowest level first.
	PolicyLastFirst
	// PolicyLastLast places landmarks after non-landmarks, highest level first.
	PolicyLastLast
)

// Placement is the positioning half of an ordering policy.
type Placement int

const (
	// PlaceArrival positions every candidate by its arrival index.
	PlaceArrival Placement = iota
	// PlaceFirst starts landmark positions right after the current depth.
	PlaceFirst
	// PlaceLast starts landmark positions after the round's non-landmarks.
	PlaceLast
)

// Sorting is the ordering half of an ordering policy.
type Sorting int

const (
	// SortArrival keeps candidates in arrival order.
	SortArrival Sorting = iota
	// SortAscending orders landmarks by increasing level.
	SortAscending
	// SortDescending orders landmarks by decreasing level.
	SortDescending
	// SortLIFO orders landmarks by reverse arrival.
	SortLIFO
)

var policyNames = map[OrderingPolicy]string{
	PolicyNeutral:    "neutral",
	PolicyFirstLIFO:  "fLIFO",
	PolicyLastLIFO:   "lLIFO",
	PolicyFirstFirst: "ff",
	PolicyFirstLast:  "fl",
	PolicyLastFirst:  "lf",
	PolicyLastLast:   "ll",
}

// PolicyNames lists the accepted policy names in declaration order.
var PolicyNames = []string{"neutral", "fLIFO", "lLIFO", "ff", "fl", "lf", "ll"}

// ParsePolicy converts a policy name into an OrderingPolicy.
// Names are case-sensitive, so "FF" is rejected.
func ParsePolicy(name string) (OrderingPolicy, error) {
	for p, n := range policyNames {
		if n == name {
			return p, nil
		}
	}
	return PolicyNeutral, fmt.Errorf("%w %q: must be one of %s", ErrUnknownPolicy, name, strings.Join(PolicyNames, ", "))
}

// String returns the policy name.
func (p OrderingPolicy) String() string {
	if n, ok := policyNames[p]; ok {
		return n
	}
	return fmt.Sprintf("OrderingPolicy(%d)", int(p))
}

// Placement returns the positioning half of the policy.
func (p OrderingPolicy) Placement() Placement {
	switch p {
	case PolicyFirstLIFO, PolicyFirstFirst, PolicyFirstLast:
		return PlaceFirst
	case PolicyLastLIFO, PolicyLastFirst, PolicyLastLast:
		return PlaceLast
	default:
		return PlaceArrival
	}
}

// Sorting returns the ordering half of the policy.
func (p OrderingPolicy) Sorting() Sorting {
	switch p {
	case PolicyFirstFirst, PolicyLastFirst:
		return SortAscending
	case PolicyFirstLast, PolicyLastLast:
		return SortDescending
	case PolicyFirstLIFO, PolicyLastLIFO:
		return SortLIFO
	default:
		return SortArrival
	}
}
