package perenual

import (
	"github.com/matzehuels/plantgate/pkg/plant"
)

// Placeholder text for attributes the species list does not provide.
const (
	listDescription = "Description from Perenual API"
	genericSoil     = "Generic soil requirements"
	genericFert     = "Generic fertilizer information"
	genericHumidity = "Generic humidity information"
	genericTemp     = "Generic temperature range"
	genericPests    = "Common pests information"
	genericDiseases = "Common diseases information"
)

// toPlant converts a species record to the planner schema.
func toPlant(s species) plant.Plant {
	spacing := plant.SpacingForHeight(s.Dimensions.height())

	img := plant.DefaultImage
	if s.DefaultImage != nil && s.DefaultImage.Thumbnail != "" {
		img = s.DefaultImage.Thumbnail
	}

	var sci string
	if len(s.ScientificName) > 0 {
		sci = s.ScientificName[0]
	}

	desc := listDescription
	if s.Description != "" {
		desc = s.Description
	}

	return plant.Plant{
		ID:                  plant.SourceID(source, s.ID),
		Name:                s.CommonName,
		ScientificName:      sci,
		Type:                plant.OrUnknown(s.Type),
		Description:         desc,
		Image:               img,
		Watering:            plant.OrUnknown(s.Watering),
		Light:               plant.JoinOrUnknown(s.Sunlight),
		Soil:                genericSoil,
		Fertilizer:          genericFert,
		Humidity:            genericHumidity,
		Temperature:         genericTemp,
		Toxicity:            toxicity(s.PoisonousToHumans, s.PoisonousToPets),
		Pests:               genericPests,
		Diseases:            genericDiseases,
		CareLevel:           s.CareLevel,
		Cycle:               s.Cycle,
		Spacing:             spacing,
		PlantsPerSquareFoot: plant.PerSquareFoot(spacing),
		Color:               plant.ColorFor(s.ID),
	}
}

func toPlants(list []species) []plant.Plant {
	out := make([]plant.Plant, 0, len(list))
	for _, s := range list {
		out = append(out, toPlant(s))
	}
	return out
}

func toxicity(humans, pets flag) string {
	if !humans.Set && !pets.Set {
		return plant.Unknown
	}
	switch {
	case humans.Value && pets.Value:
		return "Toxic to humans and pets"
	case humans.Value:
		return "Toxic to humans"
	case pets.Value:
		return "Toxic to pets"
	default:
		return "Non-toxic"
	}
}
