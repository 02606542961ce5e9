package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/plantgate/pkg/buildinfo"
	"github.com/matzehuels/plantgate/pkg/config"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Persistent flags:
//   - --config: TOML config file (default $XDG_CONFIG_HOME/plantgate/config.toml)
//   - --no-cache: bypass the response cache
//   - --verbose (-v): debug logging, including raw upstream responses
//
// A .env file in the working directory is loaded before the config, so
// PERENUAL_API_KEY can live there.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "plantgate looks up plant species through a rate-limited, cached gateway",
		Long:          `plantgate searches the Perenual species API for the garden planner. Every upstream call passes a shared rate gate (30 requests per minute, 3 at a time), is retried on HTTP 429 with exponential backoff, and is cached for an hour.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := LogInfo
			if c.verbose {
				level = LogDebug
			}
			c.SetLogLevel(level)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return config.LoadDotEnv()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	flags.BoolVar(&c.noCache, "no-cache", false, "bypass the response cache")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	// Register all subcommands
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.speciesCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// versionCommand creates the "version" command.
func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printLine("%s", buildinfo.String())
			return nil
		},
	}
}
