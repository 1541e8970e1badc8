package codec

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"deviceinventory/internal/domain"
)

var tableHeader = []string{"PRIORITY", "STATUS", "ALIAS", "SERIAL", "MODEL", "ARCHITECTURE", "FIRMWARE", "HOST"}

// TableCodec renders devices as aligned columns for terminals
type TableCodec struct {
	header *color.Color
}

// NewTableCodec creates a table codec. When colored is set the header is printed in bold.
func NewTableCodec(colored bool) *TableCodec {
	c := color.New(color.Bold)
	if colored {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return &TableCodec{header: c}
}

// Format returns the codec format identifier
func (c *TableCodec) Format() string {
	return "table"
}

// Export writes a header and one line per device. Each column is as wide as its widest cell.
func (c *TableCodec) Export(devices []*domain.Device, w io.Writer) error {
	cells := [][]string{tableHeader}
	for _, r := range Rows(devices) {
		cells = append(cells, []string{
			strconv.Itoa(int(r.Priority)),
			orUnknown(r.Status),
			orUnknown(r.Alias),
			orUnknown(r.Serial),
			orUnknown(r.Model),
			orUnknown(r.Architecture),
			orUnknown(r.Firmware),
			orUnknown(r.Host),
		})
	}

	widths := make([]int, len(tableHeader))
	for _, row := range cells {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	for n, row := range cells {
		var b strings.Builder
		for i, cell := range row {
			if i > 0 {
				b.WriteByte(' ')
			}
			if i < len(row)-1 {
				cell = fmt.Sprintf("%-*s", widths[i], cell)
			}
			b.WriteString(cell)
		}
		line := b.String()
		if n == 0 {
			line = c.header.Sprint(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write table: %w", err)
		}
	}
	return nil
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}
