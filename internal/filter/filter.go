// Package filter selects devices matching user-supplied criteria.
//
// Criteria are compiled once into a Filter. A criterion that is set never matches a device
// on which the corresponding attribute is unknown.
package filter

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/gobwas/glob"

	"deviceinventory/internal/domain"
)

// Criteria is the uncompiled form of a filter. Empty fields impose no constraint.
type Criteria struct {
	Alias        string // glob, case-insensitive
	Model        string // glob, case-insensitive
	Architecture string
	Firmware     string // version range such as ">=11.0, <12.0"; a bare version is a caret range
	Status       string
}

// Error reports a criterion that could not be compiled
type Error struct {
	Criterion string
	Value     string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s filter %q: %v", e.Criterion, e.Value, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Record is what a filter inspects. Each accessor reports whether the attribute is known.
type Record interface {
	Alias() (string, bool)
	Model() (string, bool)
	Architecture() (domain.Architecture, bool)
	Firmware() (*semver.Version, bool)
	Status() (domain.Status, bool)
}

// Filter is a compiled set of criteria
type Filter struct {
	alias        glob.Glob
	model        glob.Glob
	architecture *domain.Architecture
	firmware     *semver.Constraints
	status       *domain.Status
}

// Compile validates and compiles the criteria
func Compile(c Criteria) (*Filter, error) {
	f := &Filter{}
	var err error

	if c.Alias != "" {
		if f.alias, err = compileGlob(c.Alias); err != nil {
			return nil, &Error{Criterion: "alias", Value: c.Alias, Err: err}
		}
	}
	if c.Model != "" {
		if f.model, err = compileGlob(c.Model); err != nil {
			return nil, &Error{Criterion: "model", Value: c.Model, Err: err}
		}
	}
	if c.Architecture != "" {
		arch, err := domain.ParseArchitecture(c.Architecture)
		if err != nil {
			return nil, &Error{Criterion: "architecture", Value: c.Architecture, Err: err}
		}
		f.architecture = &arch
	}
	if c.Firmware != "" {
		if f.firmware, err = versionRange(c.Firmware); err != nil {
			return nil, &Error{Criterion: "firmware", Value: c.Firmware, Err: err}
		}
	}
	if c.Status != "" {
		status, err := domain.ParseStatus(c.Status)
		if err != nil {
			return nil, &Error{Criterion: "status", Value: c.Status, Err: err}
		}
		f.status = &status
	}
	return f, nil
}

// versionRange compiles a version requirement. A comparator without an operator is a caret
// range, so "11.5" means ">=11.5.0, <12.0.0" rather than "11.5.x".
func versionRange(s string) (*semver.Constraints, error) {
	if strings.Contains(s, " - ") {
		return semver.NewConstraint(s)
	}
	groups := strings.Split(s, "||")
	for i, group := range groups {
		comparators := strings.Split(group, ",")
		for j, c := range comparators {
			c = strings.TrimSpace(c)
			if bareVersion(c) {
				c = "^" + c
			}
			comparators[j] = c
		}
		groups[i] = strings.Join(comparators, ", ")
	}
	return semver.NewConstraint(strings.Join(groups, " || "))
}

func bareVersion(c string) bool {
	c = strings.TrimPrefix(c, "v")
	return c != "" && c[0] >= '0' && c[0] <= '9'
}

// compileGlob compiles a lower-cased pattern; candidates are lower-cased before matching
func compileGlob(pattern string) (glob.Glob, error) {
	return glob.Compile(strings.ToLower(pattern))
}

// IsEmpty reports whether the filter matches every record
func (f *Filter) IsEmpty() bool {
	return f.alias == nil && f.model == nil && f.architecture == nil && f.firmware == nil && f.status == nil
}

// Matches reports whether every set criterion holds for the record
func (f *Filter) Matches(r Record) bool {
	if f.alias != nil {
		alias, ok := r.Alias()
		if !ok || !f.alias.Match(strings.ToLower(alias)) {
			return false
		}
	}
	if f.model != nil {
		model, ok := r.Model()
		if !ok || !f.model.Match(strings.ToLower(model)) {
			return false
		}
	}
	if f.architecture != nil {
		arch, ok := r.Architecture()
		if !ok || arch != *f.architecture {
			return false
		}
	}
	if f.firmware != nil {
		version, ok := r.Firmware()
		if !ok || !f.firmware.Check(version) {
			return false
		}
	}
	if f.status != nil {
		status, ok := r.Status()
		if !ok || status != *f.status {
			return false
		}
	}
	return true
}

// Select returns the records the filter matches, preserving order
func Select[R Record](f *Filter, records []R) []R {
	var out []R
	for _, r := range records {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
