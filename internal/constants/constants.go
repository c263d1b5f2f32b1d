package constants

import "time"

const (
	DefaultHTTPTimeout = 5 * time.Second
)

const (
	// DefaultPollInterval keeps one fetch per server-side cron minute
	// without ever aligning exactly with it.
	DefaultPollInterval = 61 * time.Second

	// IdleSleep is the pause between loop ticks; short enough that key
	// presses feel immediate.
	IdleSleep = 100 * time.Millisecond
)

const (
	DefaultEngine  = "godville"
	DefaultBrowser = "x-www-browser"
)

const (
	ReportConnectionAlways = "always"
	ReportConnectionOnce   = "once"
	ReportConnectionNever  = "never"
)

const (
	DefaultLogFile = "godmon.log"
)

const (
	ShutdownTimeout = 5 * time.Second
)
