package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"godmon/internal/logger"
)

type recordedRun struct {
	cmdline string
	env     []string
}

func recordingNotifier(command string, quiet bool, refreshCommand string) (*Notifier, *[]recordedRun) {
	n := New(command, quiet, "true", refreshCommand, "https://example.net/superhero", logger.NopLogger())
	var runs []recordedRun
	n.run = func(_ context.Context, cmdline string, env []string) error {
		runs = append(runs, recordedRun{cmdline: cmdline, env: env})
		return nil
	}
	return n, &runs
}

func TestNotifier_Notify_SubstitutesMessage(t *testing.T) {
	n, runs := recordingNotifier(`notify-send godmon "{message}"`, false, "")

	require.NoError(t, n.Notify("Arena fight started"))

	require.Len(t, *runs, 1)
	assert.Equal(t, `notify-send godmon "Arena fight started"`, (*runs)[0].cmdline)
	assert.Contains(t, (*runs)[0].env, "GODMON_MESSAGE=Arena fight started")
}

func TestNotifier_Notify_QuietIsNoOp(t *testing.T) {
	n, runs := recordingNotifier(`notify-send godmon "{message}"`, true, "")
	var popups []string
	n.SetPopupSink(func(message string) string {
		popups = append(popups, message)
		return "handle"
	})

	require.NoError(t, n.Notify("suppressed"))
	assert.Empty(t, *runs)
	assert.Empty(t, popups, "quiet mode hides the popup too")
}

func TestNotifier_Notify_NoCommandIsNoOp(t *testing.T) {
	n, runs := recordingNotifier("", false, "")

	require.NoError(t, n.Notify("nowhere to go"))
	assert.Empty(t, *runs)
}

func TestNotifier_Notify_RaisesPopupWhenSinkIsSet(t *testing.T) {
	n, _ := recordingNotifier("", false, "")
	var popups []string
	n.SetPopupSink(func(message string) string {
		popups = append(popups, message)
		return "handle"
	})

	require.NoError(t, n.Notify("Arena fight started"))
	assert.Equal(t, []string{"Arena fight started"}, popups)
}

func TestNotifier_RefreshSession(t *testing.T) {
	n, runs := recordingNotifier("", false, "godville-login --resume")

	require.NoError(t, n.RefreshSession())
	require.Len(t, *runs, 1)
	assert.Equal(t, "godville-login --resume", (*runs)[0].cmdline)
}

func TestNotifier_RefreshSession_FailsWithoutCommand(t *testing.T) {
	n, _ := recordingNotifier("", false, "")
	assert.Error(t, n.RefreshSession())
}
