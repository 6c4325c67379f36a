package application

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/ericfisherdev/reviewrot/internal/domain/model"
)

// ErrInvalidAgeFilter indicates an age filter expression could not be parsed.
var ErrInvalidAgeFilter = errors.New("invalid age filter")

// AgeState selects which side of the cutoff an AgeFilter keeps.
type AgeState string

const (
	AgeOlder AgeState = "older"
	AgeNewer AgeState = "newer"
)

// AgeUnit is the calendar unit of an AgeFilter span.
type AgeUnit string

const (
	UnitYear   AgeUnit = "y"
	UnitMonth  AgeUnit = "m"
	UnitDay    AgeUnit = "d"
	UnitHour   AgeUnit = "h"
	UnitMinute AgeUnit = "min"
)

var agePattern = regexp.MustCompile(`^(\d+)(y|m|d|h|min)$`)

// AgeFilter keeps review requests filed before (older) or after (newer)
// a cutoff that lies Value Units before now. Years and months are counted
// on the calendar.
type AgeFilter struct {
	State AgeState
	Value int
	Unit  AgeUnit
}

// ParseAgeFilter parses expressions such as "3d", "2m" or "30min".
func ParseAgeFilter(state AgeState, expr string) (AgeFilter, error) {
	if state != AgeOlder && state != AgeNewer {
		return AgeFilter{}, fmt.Errorf("%w: state %q", ErrInvalidAgeFilter, state)
	}

	m := agePattern.FindStringSubmatch(expr)
	if m == nil {
		return AgeFilter{}, fmt.Errorf("%w: %q (want <n>y|m|d|h|min)", ErrInvalidAgeFilter, expr)
	}

	value, err := strconv.Atoi(m[1])
	if err != nil {
		return AgeFilter{}, fmt.Errorf("%w: %q: %v", ErrInvalidAgeFilter, expr, err)
	}

	return AgeFilter{State: state, Value: value, Unit: AgeUnit(m[2])}, nil
}

// Cutoff returns the instant the filter compares submission times against.
func (f AgeFilter) Cutoff(now time.Time) time.Time {
	switch f.Unit {
	case UnitYear:
		return now.AddDate(-f.Value, 0, 0)
	case UnitMonth:
		return now.AddDate(0, -f.Value, 0)
	case UnitDay:
		return now.AddDate(0, 0, -f.Value)
	case UnitHour:
		return now.Add(-time.Duration(f.Value) * time.Hour)
	default:
		return now.Add(-time.Duration(f.Value) * time.Minute)
	}
}

// Keep reports whether req passes the filter.
func (f AgeFilter) Keep(req model.ReviewRequest, now time.Time) bool {
	cutoff := f.Cutoff(now)
	if f.State == AgeOlder {
		return !req.Time.After(cutoff)
	}
	return !req.Time.Before(cutoff)
}

// String renders the filter the way it is written in a query string.
func (f AgeFilter) String() string {
	return fmt.Sprintf("%s=%d%s", f.State, f.Value, f.Unit)
}

// AgeFilterFromQuery builds a filter from the older and newer query
// parameters of a page load. Both empty means no filter (nil). Setting both
// is an error.
func AgeFilterFromQuery(older, newer string) (*AgeFilter, error) {
	switch {
	case older != "" && newer != "":
		return nil, fmt.Errorf("%w: older and newer are mutually exclusive", ErrInvalidAgeFilter)
	case older != "":
		f, err := ParseAgeFilter(AgeOlder, older)
		if err != nil {
			return nil, err
		}
		return &f, nil
	case newer != "":
		f, err := ParseAgeFilter(AgeNewer, newer)
		if err != nil {
			return nil, err
		}
		return &f, nil
	default:
		return nil, nil
	}
}
