package ui

import (
	"fmt"

	"github.com/muesli/termenv"

	"godmon/internal/status"
)

// field binds one panel line to a snapshot key.
type field struct {
	label string
	key   string
}

// panel is a fixed-position titled box of labelled snapshot fields.
type panel struct {
	title  string
	row    int
	col    int
	width  int
	fields []field
}

const (
	panelWidth  = 38
	panelHeight = 9
	labelWidth  = 14
)

// layout mirrors a two-column dashboard: hero vitals and pet on the
// left, quest and inventory on the right, session state across the
// bottom.
var panels = []panel{
	{
		title: "Status", row: 1, col: 1, width: panelWidth,
		fields: []field{
			{"Name", "name"},
			{"Health", "health"},
			{"Max health", "max_health"},
			{"Godpower", "godpower"},
			{"Experience", "exp_progress"},
			{"Town", "town_name"},
			{"Distance", "distance"},
		},
	},
	{
		title: "Quest", row: 1, col: panelWidth + 3, width: panelWidth,
		fields: []field{
			{"Quest", "quest"},
			{"Progress", "quest_progress"},
			{"Diary", "diary_last"},
		},
	},
	{
		title: "Pet", row: panelHeight + 2, col: 1, width: panelWidth,
		fields: []field{
			{"Species", "pet_class"},
			{"Name", "pet_name"},
			{"Level", "pet_level"},
		},
	},
	{
		title: "Inventory", row: panelHeight + 2, col: panelWidth + 3, width: panelWidth,
		fields: []field{
			{"Bricks", "bricks_cnt"},
			{"Wood", "wood_cnt"},
			{"Items", "inventory_num"},
		},
	},
}

// sessionLine summarizes connectivity and session state on one line
// under the panels.
func sessionLine(snap status.Snapshot) string {
	switch {
	case snap == nil:
		return "Session: waiting for first update"
	case snap.TokenExpired():
		return "Session: API token expired"
	case snap.Expired():
		return "Session: expired"
	default:
		if msg, ok := snap.FetchError(); ok {
			return fmt.Sprintf("Session: connection lost (%s), showing last known state", msg)
		}
		return "Session: active"
	}
}

func (p panel) render(out *termenv.Output, snap status.Snapshot) {
	title := termenv.String(" " + p.title + " ").Bold()

	out.MoveCursor(p.row, p.col)
	fmt.Fprintf(out, "+-%s%s+", title, pad("", p.width-len(p.title)-5, '-'))

	line := p.row + 1
	for _, f := range p.fields {
		out.MoveCursor(line, p.col)
		value := clip(snap.Text(f.key), p.width-labelWidth-5)
		fmt.Fprintf(out, "| %-*s %-*s |", labelWidth, f.label+":", p.width-labelWidth-5, value)
		line++
	}
	for ; line < p.row+panelHeight-1; line++ {
		out.MoveCursor(line, p.col)
		fmt.Fprintf(out, "|%s|", pad("", p.width-2, ' '))
	}

	out.MoveCursor(p.row+panelHeight-1, p.col)
	fmt.Fprintf(out, "+%s+", pad("", p.width-2, '-'))
}

func pad(s string, width int, fill rune) string {
	for len(s) < width {
		s += string(fill)
	}
	return s
}

func clip(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
