package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Status is the loan service's numeric device status
type Status uint8

const (
	StatusUnknown   Status = 0
	StatusConnected Status = 1
	StatusOnLoan    Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return ""
	case StatusConnected:
		return "connected"
	case StatusOnLoan:
		return "on-loan"
	default:
		return "status-" + strconv.Itoa(int(s))
	}
}

// ParseStatus parses a status by name or by numeric code
func ParseStatus(s string) (Status, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "connected":
		return StatusConnected, nil
	case "on-loan":
		return StatusOnLoan, nil
	default:
		n, err := strconv.ParseUint(strings.TrimPrefix(v, "status-"), 10, 8)
		if err != nil || n == 0 {
			return StatusUnknown, fmt.Errorf("unknown status %q (expected connected or on-loan)", s)
		}
		return Status(n), nil
	}
}
