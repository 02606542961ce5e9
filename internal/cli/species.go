package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	perrors "github.com/matzehuels/plantgate/pkg/errors"
	"github.com/matzehuels/plantgate/pkg/integrations/perenual"
	"github.com/matzehuels/plantgate/pkg/plant"
)

// speciesCommand creates the "species" command.
func (c *CLI) speciesCommand() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "species <id>",
		Short: "Show the details of one species",
		Long:  `Show care details for a species. The id is either numeric or the "perenual-<n>" form printed by search.`,
		Example: `  plantgate species 1234
  plantgate species perenual-1234 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := perrors.ParseSpeciesID(args[0])
			if err != nil {
				return err
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			s, err := c.newStack(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			return c.showSpecies(cmd.Context(), s, id, jsonOut)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the species as JSON")

	return cmd
}

func (c *CLI) showSpecies(ctx context.Context, s *stack, id int, jsonOut bool) error {
	res := withSpinner(ctx, !jsonOut, fmt.Sprintf("Fetching species %d...", id), func() perenual.SpeciesResult {
		return s.plants.SpeciesResult(ctx, id)
	})
	if res.Failed() {
		return lookupFailed(res.Code, res.Error)
	}
	if jsonOut {
		return writeJSON(res.Plant)
	}
	printPlant(res.Plant)
	return nil
}

func printPlant(p *plant.Plant) {
	fmt.Fprintln(stdout, StyleTitle.Render(p.Name))
	if p.ScientificName != "" {
		printDetail("%s", p.ScientificName)
	}
	printNewline()

	printKeyValue("ID", p.ID)
	printKeyValue("Type", p.Type)
	if p.Cycle != "" {
		printKeyValue("Cycle", p.Cycle)
	}
	if p.CareLevel != "" {
		printKeyValue("Care level", p.CareLevel)
	}
	printKeyValue("Watering", p.Watering)
	printKeyValue("Light", p.Light)
	printKeyValue("Soil", p.Soil)
	printKeyValue("Fertilizer", p.Fertilizer)
	printKeyValue("Humidity", p.Humidity)
	printKeyValue("Temperature", p.Temperature)
	printKeyValue("Toxicity", p.Toxicity)
	printKeyValue("Pests", p.Pests)
	printKeyValue("Diseases", p.Diseases)
	printKeyValue("Spacing", fmt.Sprintf("%d in (%s per sq ft)", p.Spacing, strconv.FormatFloat(p.PlantsPerSquareFoot, 'f', -1, 64)))
	printKeyValue("Image", StyleLink.Render(p.Image))

	if p.Description != "" {
		printNewline()
		fmt.Fprintln(stdout, p.Description)
	}
}
