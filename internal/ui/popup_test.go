package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"godmon/internal/status"
)

func snapshot(kv ...any) status.Snapshot {
	snap := status.Snapshot{}
	for i := 0; i+1 < len(kv); i += 2 {
		snap[kv[i].(string)] = kv[i+1]
	}
	return snap
}

func TestPopupStack_PushPop(t *testing.T) {
	var stack popupStack
	assert.True(t, stack.empty())
	assert.False(t, stack.pop())

	stack.push("first warning")
	stack.push("second warning")
	assert.False(t, stack.empty())

	assert.True(t, stack.pop())
	require.Len(t, stack.popups, 1)
	assert.Equal(t, "first warning", stack.popups[0].message, "pops newest first")
}

func TestPopupStack_RemoveByHandle(t *testing.T) {
	var stack popupStack
	first := stack.push("first")
	stack.push("second")

	stack.remove(first)
	require.Len(t, stack.popups, 1)
	assert.Equal(t, "second", stack.popups[0].message)

	stack.remove("no-such-handle")
	assert.Len(t, stack.popups, 1)
}

func TestWrapText(t *testing.T) {
	lines := wrapText("the quick brown fox jumps over the lazy dog", 15)
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.LessOrEqual(t, len(line), 15)
	}
	assert.Equal(t, "the quick brown", lines[0])

	assert.Equal(t, []string{""}, wrapText("", 20))
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "exact", clip("exact", 5))
	assert.Equal(t, "long te...", clip("long text that overflows", 10))
	assert.Equal(t, "", clip("anything", 0))
}

func TestSessionLine(t *testing.T) {
	assert.Contains(t, sessionLine(nil), "waiting")
	assert.Contains(t, sessionLine(snapshot()), "active")
	assert.Contains(t, sessionLine(snapshot("expired", true)), "expired")
	assert.Contains(t, sessionLine(snapshot("token_expired", true)), "token")
	assert.Contains(t, sessionLine(snapshot("error", "connection refused")), "connection refused")
}
