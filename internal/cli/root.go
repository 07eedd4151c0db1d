package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "commenter",
		Short: "Generate documentation comments for TypeScript sources with an LLM",
		Long: `Commenter asks a language model to describe each function, class,
interface and type in your TypeScript sources and splices the result
above the declaration as a block comment.

Every generated comment carries a stable slug and a version, so
re-running the tool replaces comments in place instead of stacking them.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("service", "", "Generator backend: claude|gpt|ollama (default from config, else ollama)")
	flags.String("api-key", "", "API key for hosted backends (default from the configured env var)")
	flags.String("model", "", "Model name (default depends on the backend)")
	flags.String("host", "", "Ollama host URL")
	flags.String("config", "", "Path to a config file (default ./"+configFileName+")")
	flags.Bool("json", false, "Print machine-readable summary")
	flags.BoolP("verbose", "v", false, "Log every element at debug level")
	flags.Bool("dry-run", false, "Compute changes without writing files")

	fileCmd := &cobra.Command{
		Use:   "file <path>",
		Short: "Regenerate the comments of every element in one file",
		Args:  cobra.ExactArgs(1),
		RunE:  RunFile,
	}

	elementCmd := &cobra.Command{
		Use:   "element <path> <slug>",
		Short: "Regenerate the one comment identified by its slug",
		Args:  cobra.ExactArgs(2),
		RunE:  RunElement,
	}

	repoCmd := &cobra.Command{
		Use:   "repo [dir]",
		Short: "Regenerate comments in every supported file of a repository",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunRepo,
	}
	repoCmd.Flags().IntP("jobs", "j", 0, "Files processed in parallel (default from config, else 4)")

	readmeCmd := &cobra.Command{
		Use:   "readme [dir]",
		Short: "Generate README.md content from the repository outline",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunReadme,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "commenter %s\n", version)
		},
	}

	rootCmd.AddCommand(
		fileCmd,
		elementCmd,
		repoCmd,
		readmeCmd,
		versionCmd,
	)

	return rootCmd
}
