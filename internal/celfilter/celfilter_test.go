package celfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type claim struct {
	ID       string  `json:"id"`
	Status   string  `json:"status"`
	Priority string  `json:"priority"`
	Cost     float64 `json:"cost"`
}

var fields = []string{"id", "status", "priority", "cost", "in", "bad-name"}

func TestFilter_Match(t *testing.T) {
	f, err := Compile(`status == "open" && cost > 100`, fields)
	require.NoError(t, err)

	ok, err := f.Match(map[string]any{"status": "open", "cost": 150.0})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.Match(map[string]any{"status": "open", "cost": 50.0})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFilter_RecordVariable(t *testing.T) {
	f, err := Compile(`record["bad-name"] == "x" && record.priority == "high"`, fields)
	require.NoError(t, err)

	ok, err := f.Match(map[string]any{"bad-name": "x", "priority": "high"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFilter_MissingFieldIsNull(t *testing.T) {
	f, err := Compile(`priority == null`, fields)
	require.NoError(t, err)

	ok, err := f.Match(map[string]any{"status": "open"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCompile_Errors(t *testing.T) {
	_, err := Compile(`status ==`, fields)
	assert.Error(t, err)

	_, err = Compile(`unknownField == 1`, fields)
	assert.Error(t, err)

	_, err = Compile(`"text"`, fields)
	assert.ErrorContains(t, err, "want bool")
}

func TestApply(t *testing.T) {
	recs := []any{
		&claim{ID: "c1", Status: "open", Priority: "high", Cost: 10},
		&claim{ID: "c2", Status: "resolved", Priority: "high", Cost: 20},
		&claim{ID: "c3", Status: "open", Priority: "low", Cost: 30},
	}
	f, err := Compile(`status == "open"`, fields)
	require.NoError(t, err)

	got, err := Apply(f, recs)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c1", got[0].(*claim).ID)
	assert.Equal(t, "c3", got[1].(*claim).ID)
}

func TestApply_EvaluationError(t *testing.T) {
	f, err := Compile(`cost > 1`, fields)
	require.NoError(t, err)

	_, err = Apply(f, []any{map[string]any{"cost": "not a number"}})
	assert.Error(t, err)
}
