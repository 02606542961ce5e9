package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for plantgate.

To load completions:

Bash:
  $ source <(plantgate completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ plantgate completion bash > /etc/bash_completion.d/plantgate
  # macOS:
  $ plantgate completion bash > $(brew --prefix)/etc/bash_completion.d/plantgate

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ plantgate completion zsh > "${fpath[1]}/_plantgate"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ plantgate completion fish | source

  # To load completions for each session, execute once:
  $ plantgate completion fish > ~/.config/fish/completions/plantgate.fish

PowerShell:
  PS> plantgate completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> plantgate completion powershell > plantgate.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(stdout, true)
			case "zsh":
				return root.GenZshCompletion(stdout)
			case "fish":
				return root.GenFishCompletion(stdout, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(stdout)
			}
			return nil
		},
	}

	return cmd
}
