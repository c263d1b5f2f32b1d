package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"godmon/internal/status"
)

func TestEngine_Register_RejectsDuplicateNames(t *testing.T) {
	engine := NewEngine(nil)
	predicate := func(status.Snapshot) (bool, error) { return false, nil }
	action := func() error { return nil }

	first, err := NewRule("low_health", predicate, action)
	require.NoError(t, err)
	require.NoError(t, engine.Register(first))

	second, err := NewRule("low_health", predicate, action)
	require.NoError(t, err)
	assert.Error(t, engine.Register(second))
	assert.Equal(t, 1, engine.Len())
}

func TestEngine_CheckAll_RunsInRegistrationOrder(t *testing.T) {
	engine := NewEngine(nil)
	var order []string

	for _, name := range []string{"first", "second", "third"} {
		name := name
		rule, err := NewRule(name,
			func(status.Snapshot) (bool, error) {
				order = append(order, name)
				return false, nil
			},
			func() error { return nil })
		require.NoError(t, err)
		require.NoError(t, engine.Register(rule))
	}

	engine.CheckAll(status.Snapshot{})
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestEngine_CheckAll_IsolatesFailingRules(t *testing.T) {
	engine := NewEngine(nil)
	var laterFired int

	panicking, err := NewRule("panicking",
		func(status.Snapshot) (bool, error) { panic("boom") },
		func() error { return nil })
	require.NoError(t, err)
	require.NoError(t, engine.Register(panicking))

	later, err := NewRule("later",
		func(status.Snapshot) (bool, error) { return true, nil },
		func() error { laterFired++; return nil })
	require.NoError(t, err)
	require.NoError(t, engine.Register(later))

	assert.NotPanics(t, func() { engine.CheckAll(status.Snapshot{}) })
	assert.Equal(t, 1, laterFired)
}
