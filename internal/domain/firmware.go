package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrInvalidFirmware is returned when a firmware string cannot be coerced to a version
var ErrInvalidFirmware = errors.New("invalid firmware version")

// CoerceFirmware turns a device firmware string into a semantic version.
// The first three dot-separated parts must be numeric and become major, minor and patch;
// anything after the third dot is kept as build metadata, so "11.5.23.4" becomes 11.5.23+4.
func CoerceFirmware(s string) (*semver.Version, error) {
	parts := strings.SplitN(s, ".", 4)
	if len(parts) < 3 {
		return nil, fmt.Errorf("%w: %q has fewer than three parts", ErrInvalidFirmware, s)
	}

	var nums [3]uint64
	for i := range nums {
		n, err := strconv.ParseUint(parts[i], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: part %d is not a number", ErrInvalidFirmware, s, i+1)
		}
		nums[i] = n
	}

	var metadata string
	if len(parts) == 4 {
		metadata = parts[3]
		if !validMetadata(metadata) {
			return nil, fmt.Errorf("%w: %q: invalid build metadata %q", ErrInvalidFirmware, s, metadata)
		}
	}
	return semver.New(nums[0], nums[1], nums[2], "", metadata), nil
}

// validMetadata checks dot-separated identifiers of alphanumerics and hyphens
func validMetadata(s string) bool {
	if s == "" {
		return true
	}
	for _, ident := range strings.Split(s, ".") {
		if ident == "" {
			return false
		}
		for _, r := range ident {
			if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '-') {
				return false
			}
		}
	}
	return true
}

// sameFirmware compares versions including build metadata
func sameFirmware(a, b *semver.Version) bool {
	return a.Equal(b) && a.Metadata() == b.Metadata()
}
