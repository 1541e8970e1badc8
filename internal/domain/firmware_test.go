package domain

import (
	"errors"
	"testing"
)

func TestCoerceFirmware(t *testing.T) {
	tests := []struct {
		in       string
		want     string
		metadata string
	}{
		{"11.5.23", "11.5.23", ""},
		{"11.5.23.4", "11.5.23+4", "4"},
		{"8.45.4.5", "8.45.4+5", "5"},
		{"10.12.199.1.2", "10.12.199+1.2", "1.2"},
		{"12.0.0.beta-1", "12.0.0+beta-1", "beta-1"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := CoerceFirmware(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v.String() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, v.String())
			}
			if v.Metadata() != tt.metadata {
				t.Errorf("expected metadata %q, got %q", tt.metadata, v.Metadata())
			}
		})
	}
}

func TestCoerceFirmwareRejects(t *testing.T) {
	for _, in := range []string{"", "11", "11.5", "11.x.3", "v11.5.23", "11.5.23.a..b", "11.5.23.4_1"} {
		t.Run(in, func(t *testing.T) {
			_, err := CoerceFirmware(in)
			if !errors.Is(err, ErrInvalidFirmware) {
				t.Errorf("expected ErrInvalidFirmware, got %v", err)
			}
		})
	}
}
