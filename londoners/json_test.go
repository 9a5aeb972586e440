package londoners

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func parseJSON(t *testing.T, source string) JSON {
	result := JSON{}
	require.NoError(t, json.Unmarshal([]byte(source), &result))
	return result
}

func TestJSONGet(t *testing.T) {
	body := parseJSON(t, `{
		"money": {"rateId": "rate-1", "total": 120.5},
		"results": [{"_id": "first"}, {"_id": "second"}]
	}`)

	t.Run("nested-object", func(t *testing.T) {
		value, ok := body.Text("money", "rateId")
		require.True(t, ok)
		require.Equal(t, "rate-1", value)
	})

	t.Run("array-index", func(t *testing.T) {
		value, ok := body.Text("results", 1, "_id")
		require.True(t, ok)
		require.Equal(t, "second", value)
	})

	t.Run("number", func(t *testing.T) {
		value, ok := body.Number("money", "total")
		require.True(t, ok)
		require.Equal(t, 120.5, value)
	})

	t.Run("missing-path", func(t *testing.T) {
		_, ok := body.Text("money", "missing")
		require.False(t, ok)
		_, ok = body.Text("results", 5, "_id")
		require.False(t, ok)
	})

	t.Run("wrong-shape", func(t *testing.T) {
		_, ok := body.Text("money", 0)
		require.False(t, ok)
	})
}

func TestJSONChains(t *testing.T) {
	// The rate plan field has moved between schema versions, readers take
	// the first present value.
	oldSchema := parseJSON(t, `{"money": {"rateId": "rate-old"}}`)
	newSchema := parseJSON(t, `{"ratePlan": {"_id": "rate-new"}}`)
	neither := parseJSON(t, `{}`)

	ratePlanPaths := [][]interface{}{
		{"money", "rateId"},
		{"ratePlan", "_id"},
	}

	require.Equal(t, "rate-old",
		oldSchema.TextChain("", ratePlanPaths...))
	require.Equal(t, "rate-new",
		newSchema.TextChain("", ratePlanPaths...))
	require.Equal(t, "fallback",
		neither.TextChain("fallback", ratePlanPaths...))

	require.Equal(t, 12.0, neither.NumberChain(12,
		[]interface{}{"guestsCount"}))
}
