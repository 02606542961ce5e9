package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/plantgate/pkg/cache"
	"github.com/matzehuels/plantgate/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response cache",
	}

	cmd.AddCommand(c.cacheClearCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand. Only the Redis
// backend outlives a process, so only it has anything to clear.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all cached upstream responses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Cache.Backend != config.BackendRedis {
				printInfo("The %s cache lives only inside a running process; nothing to clear", cfg.Cache.Backend)
				return nil
			}

			client, err := cache.DialRedis(cmd.Context(), cfg.Cache.RedisURL)
			if err != nil {
				return err
			}
			rc := cache.NewRedisCache(client, cfg.Cache.RedisPrefix)
			defer rc.Close()

			n, err := rc.Clear(cmd.Context())
			if err != nil {
				return err
			}
			printSuccess("Cleared %d cached entries", n)
			printDetail("Prefix: %s", cfg.Cache.RedisPrefix)
			return nil
		},
	}
}
