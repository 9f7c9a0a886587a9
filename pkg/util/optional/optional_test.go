package optional

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Assignee Value[int64] `json:"assignee"`
}

func TestValue_UnmarshalJSON(t *testing.T) {
	var absent payload
	require.NoError(t, json.Unmarshal([]byte(`{}`), &absent))
	assert.False(t, absent.Assignee.Set)

	var null payload
	require.NoError(t, json.Unmarshal([]byte(`{"assignee": null}`), &null))
	assert.True(t, null.Assignee.IsNull())

	var set payload
	require.NoError(t, json.Unmarshal([]byte(`{"assignee": 7}`), &set))
	require.True(t, set.Assignee.Set)
	require.NotNil(t, set.Assignee.Value)
	assert.EqualValues(t, 7, *set.Assignee.Value)

	var bad payload
	assert.Error(t, json.Unmarshal([]byte(`{"assignee": "x"}`), &bad))
}

func TestValue_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(payload{Assignee: Of[int64](3)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"assignee": 3}`, string(out))

	out, err = json.Marshal(payload{Assignee: Null[int64]()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"assignee": null}`, string(out))
}
