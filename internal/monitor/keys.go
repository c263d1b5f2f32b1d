package monitor

// handleKey reacts to one keystroke. Returns true when the user asked
// to quit.
func (m *Monitor) handleKey(key rune) bool {
	switch key {
	case 'q', 'Q', 3: // Ctrl-C arrives as a byte in raw mode
		return true
	case 'f':
		if err := m.notifier.OpenBrowser(); err != nil {
			m.log.Warnw("failed to open browser", "error", err)
		}
	case 'F':
		if err := m.notifier.RefreshSession(); err != nil {
			m.log.Warnw("session refresh failed", "error", err)
		}
	case 'r', 'R':
		m.forceFetch = true
	case ' ':
		m.presenter.DismissTopPopup()
	}
	return false
}
