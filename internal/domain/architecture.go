package domain

import (
	"fmt"
	"strings"
)

// Architecture is the CPU architecture of a device
type Architecture string

const (
	ArchAarch64 Architecture = "aarch64"
	ArchArmv7hf Architecture = "armv7hf"
	ArchArmv7l  Architecture = "armv7l"
	ArchMips    Architecture = "mips"
)

// Architectures lists every supported architecture
var Architectures = []Architecture{ArchAarch64, ArchArmv7hf, ArchArmv7l, ArchMips}

// ParseArchitecture parses an architecture name as reported by devices and the loan service
func ParseArchitecture(s string) (Architecture, error) {
	a := Architecture(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Architectures {
		if a == known {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown architecture %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler
func (a *Architecture) UnmarshalText(text []byte) error {
	parsed, err := ParseArchitecture(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
