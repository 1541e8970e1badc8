package domain

import (
	"fmt"
	"strings"
)

// ParseHardwareID normalizes a MAC address to twelve upper-case hex digits without separators,
// which is also how devices print their serial number.
func ParseHardwareID(s string) (string, error) {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == ':' || r == '-' || r == '.':
			continue
		case r >= '0' && r <= '9', r >= 'A' && r <= 'F':
			b.WriteRune(r)
		case r >= 'a' && r <= 'f':
			b.WriteRune(r - 'a' + 'A')
		default:
			return "", fmt.Errorf("invalid hardware id %q", s)
		}
	}
	if b.Len() != 12 {
		return "", fmt.Errorf("invalid hardware id %q: expected 12 hex digits", s)
	}
	return b.String(), nil
}
