// Package ui renders the status dashboard: fixed text panels redrawn on
// every update, plus a stack of warning pop-ups. It owns the terminal
// (alternate screen, raw mode) for the lifetime of the Screen.
package ui

import (
	"fmt"
	"os"
	"time"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"godmon/internal/status"
)

type Screen struct {
	out     *termenv.Output
	restore func()
	keys    chan rune
	popups  popupStack
	width   int
	height  int
	last    status.Snapshot
}

// NewScreen switches the terminal to the alternate screen in raw mode
// and starts the keystroke reader. Close must be called before exit or
// the terminal is left unusable.
func NewScreen() (*Screen, error) {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to set terminal raw mode: %w", err)
	}

	out := termenv.NewOutput(os.Stdout)
	out.AltScreen()
	out.HideCursor()
	out.ClearScreen()

	width, height, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		width, height = 80, 24
	}

	s := &Screen{
		out:     out,
		keys:    make(chan rune, 16),
		width:   width,
		height:  height,
		restore: func() { term.Restore(fd, oldState) },
	}
	go s.readKeys()
	return s, nil
}

func (s *Screen) Close() {
	s.out.ExitAltScreen()
	s.out.ShowCursor()
	s.restore()
}

// readKeys forwards stdin bytes into a channel so the polling loop can
// consume keystrokes without blocking. Reading stdin has no cancelable
// form; the goroutine dies with the process.
func (s *Screen) readKeys() {
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return
		}
		if n == 1 {
			select {
			case s.keys <- rune(buf[0]):
			default:
			}
		}
	}
}

// PollKey returns a pending keystroke without blocking.
func (s *Screen) PollKey() (rune, bool) {
	select {
	case key := <-s.keys:
		return key, true
	default:
		return 0, false
	}
}

// Render redraws the whole dashboard from the snapshot. Pop-ups, if
// any, are drawn over the panels.
func (s *Screen) Render(snap status.Snapshot) {
	s.last = snap
	s.redraw()
}

func (s *Screen) redraw() {
	s.out.ClearScreen()
	for _, p := range panels {
		p.render(s.out, s.last)
	}
	s.out.MoveCursor(2*panelHeight+3, 1)
	fmt.Fprint(s.out, clip(sessionLine(s.last), s.width-1))
	s.out.MoveCursor(2*panelHeight+4, 1)
	fmt.Fprint(s.out, clip(fmt.Sprintf("Updated %s   [r]efresh  [f] browser  [F] new session  [q]uit", time.Now().Format("15:04:05")), s.width-1))
	s.popups.render(s.out, s.width, s.height)
}

// ShowPopup raises a warning over the dashboard and returns a handle
// that RemovePopup accepts.
func (s *Screen) ShowPopup(message string) string {
	id := s.popups.push(message)
	s.redraw()
	return id
}

// DismissTopPopup removes the most recent warning, as the SPACE key
// does. Reports whether a warning was showing.
func (s *Screen) DismissTopPopup() bool {
	if !s.popups.pop() {
		return false
	}
	s.redraw()
	return true
}

// RemovePopup withdraws a warning by handle, for conditions that clear
// themselves, like a session that became active again.
func (s *Screen) RemovePopup(id string) {
	s.popups.remove(id)
	s.redraw()
}

func (s *Screen) HasPopups() bool { return !s.popups.empty() }
