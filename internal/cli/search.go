package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/plantgate/pkg/config"
	perrors "github.com/matzehuels/plantgate/pkg/errors"
	"github.com/matzehuels/plantgate/pkg/integrations/perenual"
)

// searchCommand creates the "search" command.
func (c *CLI) searchCommand() *cobra.Command {
	var (
		limit       int
		interactive bool
		jsonOut     bool
	)

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search plant species by common or scientific name",
		Long: `Search the Perenual species list. Multiple arguments are joined into one
search term. Results are cached for the lifetime of one process: a running
"plantgate serve" answers repeated searches from memory, while separate CLI
invocations share cached results only with the redis cache backend.`,
		Example: `  plantgate search tomato
  plantgate search sweet basil --limit 3 --json
  plantgate search rose -i`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSearch(cmd.Context(), strings.Join(args, " "), limit, interactive, jsonOut)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of results (default from config)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick a result and show its details")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print results as JSON")
	cmd.MarkFlagsMutuallyExclusive("interactive", "json")

	return cmd
}

func (c *CLI) runSearch(ctx context.Context, term string, limit int, interactive, jsonOut bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if limit == 0 {
		limit = cfg.Perenual.DefaultLimit
	}

	s, err := c.newStack(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	prog := newProgress(loggerFromContext(ctx))
	res := withSpinner(ctx, !jsonOut, fmt.Sprintf("Searching for %q...", term), func() perenual.SearchResult {
		return s.plants.SearchResult(ctx, term, limit)
	})
	if res.Failed() {
		return lookupFailed(res.Code, res.Error)
	}
	prog.done(fmt.Sprintf("Found %d plants", len(res.Plants)))

	if jsonOut {
		return writeJSON(res.Plants)
	}
	if len(res.Plants) == 0 {
		printWarning("No plants found for %q", term)
		return nil
	}

	if !interactive {
		rows := make([][]string, len(res.Plants))
		for i, p := range res.Plants {
			rows[i] = plantRow(p)
		}
		fmt.Fprintln(stdout, plantTable(rows, nil, false).Render())
		printNextStep("Show details", appName+" species "+res.Plants[0].ID)
		return nil
	}

	final, err := tea.NewProgram(NewPlantListModel(res.Plants), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("plant picker: %w", err)
	}
	picked := final.(PlantListModel).Selected
	if picked == nil {
		return nil
	}
	id, err := perrors.ParseSpeciesID(picked.ID)
	if err != nil {
		return err
	}
	return c.showSpecies(ctx, s, id, false)
}

// lookupFailed reports a folded lookup failure and returns it as an error
// for the exit status. A missing API key gets setup instructions.
func lookupFailed(code perrors.Code, msg string) error {
	if code == perrors.ErrCodeAPIKeyMissing {
		printError("The Perenual API key is not configured")
		printNextStep("Set it in the environment", "export "+config.EnvAPIKey+"=<key>")
		printDetail("or set perenual.api_key in %s", config.DefaultPath())
		return perrors.New(code, "API key missing")
	}
	return perrors.New(code, "%s", msg)
}

// withSpinner runs fn while a spinner is shown on an interactive stderr.
func withSpinner[T any](ctx context.Context, show bool, msg string, fn func() T) T {
	if !show || !isatty.IsTerminal(os.Stderr.Fd()) {
		return fn()
	}
	s := newSpinnerWithContext(ctx, msg)
	s.Start()
	defer s.Stop()
	return fn()
}

func writeJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
