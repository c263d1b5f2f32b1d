package ui

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/muesli/termenv"

	"godmon/pkg/metrics"
)

const popupFooter = "Press SPACE to dismiss"

// popup is one pending warning. Popups stack: the newest is drawn on
// top and SPACE dismisses them in reverse order of appearance.
type popup struct {
	id      string
	message string
}

type popupStack struct {
	popups []popup
}

// push adds a warning and returns its handle, for callers that want to
// withdraw it later without user interaction.
func (s *popupStack) push(message string) string {
	id := uuid.New().String()
	s.popups = append(s.popups, popup{id: id, message: message})
	metrics.ActivePopups.Set(float64(len(s.popups)))
	return id
}

// pop removes the most recent warning. Reports whether one was shown.
func (s *popupStack) pop() bool {
	if len(s.popups) == 0 {
		return false
	}
	s.popups = s.popups[:len(s.popups)-1]
	metrics.ActivePopups.Set(float64(len(s.popups)))
	return true
}

// remove withdraws a warning by handle, wherever it sits in the stack.
func (s *popupStack) remove(id string) {
	for i, p := range s.popups {
		if p.id == id {
			s.popups = append(s.popups[:i], s.popups[i+1:]...)
			metrics.ActivePopups.Set(float64(len(s.popups)))
			return
		}
	}
}

func (s *popupStack) empty() bool { return len(s.popups) == 0 }

// render draws the topmost warning centered on screen, white on red,
// with the dismissal hint in the bottom border.
func (s *popupStack) render(out *termenv.Output, width, height int) {
	if s.empty() {
		return
	}
	top := s.popups[len(s.popups)-1]

	lines := wrapText(top.message, width/2)
	boxWidth := len(popupFooter) + 6
	for _, line := range lines {
		if len(line)+4 > boxWidth {
			boxWidth = len(line) + 4
		}
	}
	boxHeight := len(lines) + 2

	row := (height - boxHeight) / 2
	col := (width - boxWidth) / 2
	if row < 1 {
		row = 1
	}
	if col < 1 {
		col = 1
	}

	profile := out.ColorProfile()
	styled := func(text string) termenv.Style {
		return termenv.String(text).
			Foreground(profile.Color("15")).
			Background(profile.Color("1"))
	}

	out.MoveCursor(row, col)
	fmt.Fprint(out, styled("+"+strings.Repeat("-", boxWidth-2)+"+"))
	for i, line := range lines {
		out.MoveCursor(row+1+i, col)
		fmt.Fprint(out, styled(fmt.Sprintf("| %-*s |", boxWidth-4, line)))
	}
	footer := "- " + popupFooter + " -"
	dashes := boxWidth - 2 - len(footer)
	out.MoveCursor(row+boxHeight-1, col)
	fmt.Fprint(out, styled("+"+footer+strings.Repeat("-", dashes)+"+"))
}

func wrapText(text string, width int) []string {
	if width < 10 {
		width = 10
	}
	var lines []string
	var current string
	for _, word := range strings.Fields(text) {
		switch {
		case current == "":
			current = word
		case len(current)+1+len(word) <= width:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}
