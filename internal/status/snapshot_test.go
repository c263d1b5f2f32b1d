package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_DecodesArbitraryFields(t *testing.T) {
	snap, err := Parse([]byte(`{"name":"Almighty","health":120,"arena_fight":false}`))
	require.NoError(t, err)

	assert.Equal(t, "Almighty", snap["name"])
	assert.Equal(t, float64(120), snap["health"])
	assert.Equal(t, false, snap["arena_fight"])
}

func TestParse_RejectsMalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`{"name":`))
	assert.Error(t, err)
}

func TestSnapshot_Truthy(t *testing.T) {
	snap := Snapshot{
		"bool_true":    true,
		"bool_false":   false,
		"empty_string": "",
		"string":       "yes",
		"zero":         float64(0),
		"number":       float64(3),
		"null":         nil,
		"object":       map[string]any{},
	}

	assert.True(t, snap.Truthy("bool_true"))
	assert.False(t, snap.Truthy("bool_false"))
	assert.False(t, snap.Truthy("empty_string"))
	assert.True(t, snap.Truthy("string"))
	assert.False(t, snap.Truthy("zero"))
	assert.True(t, snap.Truthy("number"))
	assert.False(t, snap.Truthy("null"))
	assert.True(t, snap.Truthy("object"))
	assert.False(t, snap.Truthy("absent"))
}

func TestSnapshot_Clone_IsIndependentAtTopLevel(t *testing.T) {
	snap := Snapshot{"health": float64(100)}
	clone := snap.Clone()
	clone["health"] = float64(10)
	clone[FieldError] = "timeout"

	assert.Equal(t, float64(100), snap["health"])
	assert.False(t, snap.Has(FieldError))
}

func TestSnapshot_Text_FormatsWholeNumbersWithoutDecimals(t *testing.T) {
	snap := Snapshot{
		"health":   float64(120),
		"progress": float64(42.5),
		"name":     "Sisyphus",
		"null":     nil,
	}

	assert.Equal(t, "120", snap.Text("health"))
	assert.Equal(t, "42.5", snap.Text("progress"))
	assert.Equal(t, "Sisyphus", snap.Text("name"))
	assert.Equal(t, "", snap.Text("null"))
	assert.Equal(t, "", snap.Text("absent"))
}

func TestSnapshot_Normalize_PublicAPIResponse(t *testing.T) {
	snap := Snapshot{"name": "Almighty", "max_health": float64(200)}
	snap.Normalize(true, "Get an API token at https://example.net/profile")

	assert.True(t, snap.TokenExpired(), "public data despite a token means the token is dead")
	assert.Equal(t, float64(200), snap["health"])
	assert.Equal(t, "...", snap["exp_progress"])
	assert.Equal(t, "Get an API token at https://example.net/profile", snap["quest"])
}

func TestSnapshot_Normalize_PublicAPIWithoutToken(t *testing.T) {
	snap := Snapshot{"name": "Almighty", "max_health": float64(200)}
	snap.Normalize(false, "")

	assert.False(t, snap.TokenExpired())
	assert.Equal(t, "...", snap["inventory_num"])
}

func TestSnapshot_Normalize_FullResponseUntouched(t *testing.T) {
	snap := Snapshot{"health": float64(80), "quest": "slay the dragon"}
	snap.Normalize(true, "hint")

	assert.False(t, snap.TokenExpired())
	assert.Equal(t, "slay the dragon", snap["quest"])
}

func TestSnapshot_FetchError(t *testing.T) {
	snap := Snapshot{}
	_, ok := snap.FetchError()
	assert.False(t, ok)

	snap[FieldError] = "connection refused"
	msg, ok := snap.FetchError()
	assert.True(t, ok)
	assert.Equal(t, "connection refused", msg)
}
