package perenual

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/plantgate/pkg/plant"
)

func TestToPlantListRecord(t *testing.T) {
	raw := `{
		"id": 1234,
		"common_name": "Sweet Basil",
		"scientific_name": ["Ocimum basilicum"],
		"cycle": "Annual",
		"watering": "Frequent",
		"sunlight": ["full sun", "part shade"],
		"default_image": {"thumbnail": "https://img.example/basil.jpg"},
		"type": "Herb",
		"dimensions": {"max_height": 60}
	}`
	var s species
	require.NoError(t, json.Unmarshal([]byte(raw), &s))

	p := toPlant(s)

	assert.Equal(t, "perenual-1234", p.ID)
	assert.Equal(t, "Sweet Basil", p.Name)
	assert.Equal(t, "Ocimum basilicum", p.ScientificName)
	assert.Equal(t, "Herb", p.Type)
	assert.Equal(t, "Description from Perenual API", p.Description)
	assert.Equal(t, "https://img.example/basil.jpg", p.Image)
	assert.Equal(t, "Frequent", p.Watering)
	assert.Equal(t, "full sun, part shade", p.Light)
	assert.Equal(t, "Generic soil requirements", p.Soil)
	assert.Equal(t, "Unknown", p.Toxicity)
	assert.Equal(t, 12, p.Spacing)
	assert.Equal(t, 1.0, p.PlantsPerSquareFoot)
	assert.Equal(t, plant.Palette[1234%8], p.Color)
}

func TestToPlantDefaults(t *testing.T) {
	p := toPlant(species{ID: 7})

	assert.Equal(t, "perenual-7", p.ID)
	assert.Equal(t, "Unknown", p.Type)
	assert.Equal(t, "Unknown", p.Watering)
	assert.Equal(t, "Unknown", p.Light)
	assert.Equal(t, plant.DefaultImage, p.Image)
	assert.Equal(t, plant.DefaultSpacing, p.Spacing)
	assert.Equal(t, 1.0, p.PlantsPerSquareFoot)
	assert.Equal(t, "#eb4d4b", p.Color)
}

func TestToPlantSpacingFromHeight(t *testing.T) {
	tests := []struct {
		height  float64
		spacing int
		perSqFt float64
	}{
		{250, 24, 0.25},
		{150, 18, 0.25},
		{75, 12, 1},
		{30, 6, 4},
	}
	for _, tt := range tests {
		p := toPlant(species{ID: 1, Dimensions: &dimensions{MaxHeight: tt.height}})
		assert.Equal(t, tt.spacing, p.Spacing, "height %v", tt.height)
		assert.Equal(t, tt.perSqFt, p.PlantsPerSquareFoot, "height %v", tt.height)
	}
}

func TestToPlantDetailRecord(t *testing.T) {
	raw := `{
		"id": 2,
		"common_name": "Foxglove",
		"description": "A biennial with tall spikes.",
		"care_level": "Medium",
		"poisonous_to_humans": 1,
		"poisonous_to_pets": true,
		"sunlight": "part shade",
		"dimensions": {"type": "Height", "min_value": 1, "max_value": 120, "unit": "feet"}
	}`
	var s species
	require.NoError(t, json.Unmarshal([]byte(raw), &s))

	p := toPlant(s)

	assert.Equal(t, "A biennial with tall spikes.", p.Description)
	assert.Equal(t, "Medium", p.CareLevel)
	assert.Equal(t, "Toxic to humans and pets", p.Toxicity)
	assert.Equal(t, "part shade", p.Light)
	assert.Equal(t, 18, p.Spacing)
}

func TestToxicity(t *testing.T) {
	yes := flag{Set: true, Value: true}
	no := flag{Set: true}
	tests := []struct {
		humans, pets flag
		want         string
	}{
		{flag{}, flag{}, "Unknown"},
		{no, no, "Non-toxic"},
		{yes, no, "Toxic to humans"},
		{no, yes, "Toxic to pets"},
		{yes, yes, "Toxic to humans and pets"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, toxicity(tt.humans, tt.pets))
	}
}

func TestFlagDecoding(t *testing.T) {
	tests := []struct {
		raw  string
		want flag
	}{
		{`null`, flag{}},
		{`0`, flag{Set: true}},
		{`1`, flag{Set: true, Value: true}},
		{`false`, flag{Set: true}},
		{`true`, flag{Set: true, Value: true}},
		{`"1"`, flag{Set: true, Value: true}},
		{`"maybe"`, flag{}},
	}
	for _, tt := range tests {
		var f flag
		require.NoError(t, json.Unmarshal([]byte(tt.raw), &f), tt.raw)
		assert.Equal(t, tt.want, f, tt.raw)
	}
}

func TestFlagSurvivesCacheRoundTrip(t *testing.T) {
	in := species{ID: 3, PoisonousToPets: flag{Set: true, Value: true}}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out species
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in.PoisonousToPets, out.PoisonousToPets)
	assert.False(t, out.PoisonousToHumans.Set)
}
