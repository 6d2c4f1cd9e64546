// Package cli wires the specprobe command tree: conformance runs, endpoint
// inventory listing and the MCP server surface.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"specprobe/internal/config"
	"specprobe/internal/logger"
)

// NewRootCommand assembles the specprobe command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "specprobe",
		Short: "Audit a live REST API against its OpenAPI description",
		Long: `specprobe probes a running API deployment and checks every readable
endpoint against the responses its OpenAPI description promises: status
codes, CORS headers, JSON bodies and schemas. Parameterized endpoints are
resolved with resource identifiers harvested from list responses earlier
in the same run.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	root.PersistentFlags().Bool("debug", false, "debug output with caller information")

	root.AddCommand(newRunCommand())
	root.AddCommand(newEndpointsCommand())
	root.AddCommand(newMCPCommand())
	root.AddCommand(newCompletionCommand())

	return root
}

// loggerFromFlags builds the run logger from the persistent flags. Handlers
// are constructed per invocation so tests can run commands in isolation.
func loggerFromFlags(cmd *cobra.Command) zerolog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	debug, _ := cmd.Flags().GetBool("debug")
	return logger.SetupFromFlags(verbose, debug)
}

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the conformance checks against a deployment",
		Long: `Run probes the configured API instances and reports one outcome per
check. The command exits non-zero when any check fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewRunHandler(loggerFromFlags(cmd)).Execute(cmd, args)
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func newEndpointsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "endpoints",
		Short: "List the endpoints a conformance run would probe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewEndpointsHandler(loggerFromFlags(cmd)).Execute(cmd, args)
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func newMCPCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve conformance tooling over the Model Context Protocol",
		Long: `MCP exposes the conformance engine to agent clients over stdio: tools
to run checks, list probeable endpoints and fetch the latest report.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewMCPHandler(loggerFromFlags(cmd)).Execute(cmd, args)
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func newCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate completion script",
		Long: `To load completions:

Bash:

  $ source <(specprobe completion bash)

Zsh:

  $ source <(specprobe completion zsh)

Fish:

  $ specprobe completion fish | source

PowerShell:

  PS> specprobe completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		Run: func(cmd *cobra.Command, args []string) {
			switch args[0] {
			case "bash":
				cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
		},
	}
}
