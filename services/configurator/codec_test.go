package configurator_test

import (
	"strings"
	"testing"

	"mountify/models"
	"mountify/services/configurator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPopulatedAggregate(t *testing.T) *configurator.Aggregate {
	t.Helper()
	agg := configurator.NewAggregate()
	agg.InitializeMultiItem(3)
	agg.UpdateItem(0, configurator.ItemPatch{
		Selection: &configurator.SelectionPatch{Size: strPtr("55-inch"), WallType: strPtr("brick")},
		BasePrice: floatPtr(129),
	})
	agg.UpdateItem(1, configurator.ItemPatch{
		WallMount: &configurator.WallMountPatch{NeedsHardware: true, Option: "tilting"},
		Addons: &configurator.AddonsPatch{Replace: []models.Addon{
			{Key: "soundbar-install", Name: "Soundbar Installation", Price: 39},
			{Key: "cable-concealment", Name: "Cable Concealment", Price: 49},
		}},
	})
	agg.MarkStepCompleted("size", 0)
	agg.MarkStepCompleted("wall-type", 0)
	agg.MarkStepCompleted("mount-type", 2)
	agg.SetCurrentItem(1)
	agg.SetDirectProvider("prov-7", "WallPros Sydney")
	agg.SetContact(models.Contact{Name: "Ada", Email: "ada@example.com"})
	agg.SetReferral(&models.ReferralSelection{Code: "BBSYD001", DiscountPercent: 10})
	agg.SetNotes("second TV is upstairs")
	return agg
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	agg := buildPopulatedAggregate(t)

	raw, err := configurator.Encode(agg)
	require.NoError(t, err)

	decoded := configurator.Decode(raw)
	require.NotNil(t, decoded)
	assert.Equal(t, agg.Config, decoded.Config)

	// Set membership survives, including multiple per-item indices.
	assert.True(t, decoded.IsStepCompleted("size", 0))
	assert.True(t, decoded.IsStepCompleted("wall-type", 0))
	assert.True(t, decoded.IsStepCompleted("mount-type", 2))
	assert.False(t, decoded.IsStepCompleted("size", 1))

	// Re-encoding the decoded aggregate must be stable.
	raw2, err := configurator.Encode(decoded)
	require.NoError(t, err)
	assert.Equal(t, raw, raw2)
}

func TestDecodePreservesStepOrdering(t *testing.T) {
	agg := configurator.NewAggregate()
	for _, step := range []models.StepID{"c", "a", "b"} {
		agg.MarkStepCompleted(step, -1)
	}

	raw, err := configurator.Encode(agg)
	require.NoError(t, err)
	decoded := configurator.Decode(raw)
	require.NotNil(t, decoded)
	assert.Equal(t, []models.StepID{"c", "a", "b"}, decoded.Config.CompletedStepsGlobal.Values())
}

func TestEncodedStepSetsCarrySetMarker(t *testing.T) {
	agg := configurator.NewAggregate()
	agg.MarkStepCompleted("size", -1)

	raw, err := configurator.Encode(agg)
	require.NoError(t, err)
	assert.True(t, strings.Contains(raw, `"__set"`), "sets must be tagged on the wire")
}

func TestDecodeMalformedInputReturnsNil(t *testing.T) {
	for _, raw := range []string{
		"",
		"not json at all",
		`{"itemCount": "three"}`,
		`{"completedSteps": 42}`,
	} {
		assert.Nil(t, configurator.Decode(raw), "input %q", raw)
	}
}

func TestDecodeAcceptsLegacyPlainArraySteps(t *testing.T) {
	// Sessions persisted before the set marker existed hold bare arrays.
	decoded := configurator.Decode(`{"itemCount":1,"completedSteps":["size","size","contact"]}`)
	require.NotNil(t, decoded)
	assert.True(t, decoded.IsStepCompleted("size", -1))
	assert.True(t, decoded.IsStepCompleted("contact", -1))
	assert.Equal(t, 2, decoded.Config.CompletedStepsGlobal.Len(), "duplicates collapse on decode")
}

func TestDecodeResyncsItemCountWithItemList(t *testing.T) {
	agg := buildPopulatedAggregate(t)
	raw, err := configurator.Encode(agg)
	require.NoError(t, err)

	tampered := strings.Replace(raw, `"itemCount":3`, `"itemCount":5`, 1)
	require.NotEqual(t, raw, tampered)

	decoded := configurator.Decode(tampered)
	require.NotNil(t, decoded)
	assert.Equal(t, 3, decoded.Config.ItemCount, "the item list wins over a stale count")
	assert.Len(t, decoded.Config.Items, 3)

	// With no item list at all the count only gets floored, never invented.
	decoded = configurator.Decode(`{"itemCount":0}`)
	require.NotNil(t, decoded)
	assert.Equal(t, 1, decoded.Config.ItemCount)
	assert.Empty(t, decoded.Config.Items)
}

func TestDecodeClampsOutOfRangeCursor(t *testing.T) {
	agg := buildPopulatedAggregate(t)
	raw, err := configurator.Encode(agg)
	require.NoError(t, err)

	tampered := strings.Replace(raw, `"currentItemIndex":1`, `"currentItemIndex":9`, 1)
	require.NotEqual(t, raw, tampered)

	decoded := configurator.Decode(tampered)
	require.NotNil(t, decoded)
	assert.Equal(t, 2, decoded.Config.CurrentItemIndex)
}
