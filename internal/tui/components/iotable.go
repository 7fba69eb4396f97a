package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"

	"github.com/allbin/portbrain/internal/tui/colors"
)

// Reading is one polled value
type Reading struct {
	Value     int
	Direction int // digital ports only
	Err       error
}

// Snapshot is one full poll of the device
type Snapshot struct {
	Taken  time.Time
	Ports  []Reading
	Analog []Reading
}

// Column keys
const (
	columnChannel = "channel"
	columnKind    = "kind"
	columnValue   = "value"
	columnBits    = "bits"
	columnDir     = "dir"
)

// IOTable shows the digital ports and analog inputs of a snapshot
type IOTable struct {
	table table.Model
	width int
}

func NewIOTable() *IOTable {
	columns := []table.Column{
		table.NewColumn(columnChannel, "Channel", 9),
		table.NewColumn(columnKind, "Kind", 9),
		table.NewColumn(columnValue, "Value", 8),
		table.NewColumn(columnBits, "Bits", 10),
		table.NewColumn(columnDir, "Direction", 10),
	}

	t := table.New(columns).
		BorderRounded().
		HeaderStyle(lipgloss.NewStyle().Bold(true).Foreground(colors.Mauve)).
		WithBaseStyle(lipgloss.NewStyle().Foreground(colors.Text).BorderForeground(colors.Surface2)).
		WithStaticFooter("waiting for first poll").
		Focused(false)

	return &IOTable{table: t}
}

func (t *IOTable) SetWidth(width int) {
	t.width = width
	t.table = t.table.WithTargetWidth(width)
}

// SetSnapshot replaces the rows with the readings of s
func (t *IOTable) SetSnapshot(s Snapshot) {
	rows := make([]table.Row, 0, len(s.Ports)+len(s.Analog))

	for i, r := range s.Ports {
		rows = append(rows, table.NewRow(table.RowData{
			columnChannel: fmt.Sprintf("P%d", i),
			columnKind:    "digital",
			columnValue:   readingValue(r),
			columnBits:    readingBits(r),
			columnDir:     directionCell(r),
		}))
	}

	analog := lipgloss.NewStyle().Foreground(colors.Analog)
	for i, r := range s.Analog {
		rows = append(rows, table.NewRow(table.RowData{
			columnChannel: fmt.Sprintf("A%d", i),
			columnKind:    table.NewStyledCell("analog", analog),
			columnValue:   readingValue(r),
			columnBits:    "",
			columnDir:     "",
		}))
	}

	t.table = t.table.
		WithRows(rows).
		WithStaticFooter("polled " + s.Taken.Format("15:04:05.000"))
}

func readingValue(r Reading) any {
	if r.Err != nil {
		return table.NewStyledCell("error", lipgloss.NewStyle().Foreground(colors.Red))
	}
	return fmt.Sprintf("%d", r.Value)
}

func readingBits(r Reading) string {
	if r.Err != nil || r.Value < 0 || r.Value > 0xff {
		return ""
	}
	return fmt.Sprintf("%08b", r.Value)
}

// directionCell shows the direction bits; a set bit is an output
func directionCell(r Reading) any {
	if r.Err != nil {
		return ""
	}
	switch {
	case r.Direction == 0:
		return table.NewStyledCell("in", lipgloss.NewStyle().Foreground(colors.Input))
	case r.Direction == 0xff:
		return table.NewStyledCell("out", lipgloss.NewStyle().Foreground(colors.Output))
	default:
		return table.NewStyledCell(fmt.Sprintf("%08b", r.Direction), lipgloss.NewStyle().Foreground(colors.Warning))
	}
}

func (t *IOTable) View() string {
	return t.table.View()
}
