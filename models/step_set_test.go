package models_test

import (
	"encoding/json"
	"testing"

	"mountify/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepSetDeduplicatesAndKeepsOrder(t *testing.T) {
	s := models.NewStepSet("b", "a", "b", "c", "a")
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []models.StepID{"b", "a", "c"}, s.Values())
	assert.True(t, s.Has("c"))
	assert.False(t, s.Has("d"))
}

func TestStepSetJSONUsesSetMarker(t *testing.T) {
	s := models.NewStepSet("size", "mount-type")
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"__set":["size","mount-type"]}`, string(data))

	var decoded models.StepSet
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, s.Values(), decoded.Values())
}

func TestStepSetUnmarshalAcceptsBareArray(t *testing.T) {
	var s models.StepSet
	require.NoError(t, json.Unmarshal([]byte(`["size","size","contact"]`), &s))
	assert.Equal(t, []models.StepID{"size", "contact"}, s.Values())
}

func TestStepSetUnmarshalRejectsOtherShapes(t *testing.T) {
	var s models.StepSet
	assert.Error(t, json.Unmarshal([]byte(`42`), &s))
	assert.Error(t, json.Unmarshal([]byte(`{"elems":["size"]}`), &s))
}
