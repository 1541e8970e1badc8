package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownFingerprint is returned when a result addresses a record that is not in the table
var ErrUnknownFingerprint = errors.New("unknown fingerprint")

// probeSource names the enrichment result in conflict errors
const probeSource = "probe"

// ConflictError reports two sources disagreeing on a single-valued attribute of a device
type ConflictError struct {
	Fingerprint string
	Attribute   string
	Source      string
	Value       string
	Other       string
	OtherValue  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting %s for %s: %s reports %q but %s reports %q",
		e.Attribute, e.Fingerprint, e.Source, e.Value, e.Other, e.OtherValue)
}

// claim is one source's value for an attribute
type claim[T comparable] struct {
	source string
	value  T
}

// resolve returns the first claim and checks that every other claim agrees with it
func resolve[T comparable](fingerprint, attribute string, claims []claim[T], render func(T) string) (T, bool, error) {
	var zero T
	if len(claims) == 0 {
		return zero, false, nil
	}
	first := claims[0]
	for _, c := range claims[1:] {
		if c.value != first.value {
			return zero, false, &ConflictError{
				Fingerprint: fingerprint,
				Attribute:   attribute,
				Source:      first.source,
				Value:       render(first.value),
				Other:       c.source,
				OtherValue:  render(c.value),
			}
		}
	}
	return first.value, true, nil
}
