package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version and
// the version command. It takes effect only if called before Execute;
// cmd/streamenc's main does not call it, so the values stay empty there.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the streamenc CLI and returns an error if any command
// fails.
func Execute() error {
	var verbose bool

	root := &cobra.Command{
		Use:          "streamenc",
		Short:        "streamenc encodes values to JSON under backpressure",
		Long:         `streamenc is a demonstration and debugging CLI for the streamenc streaming JSON encoder.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("streamenc %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newEncodeCmd())
	root.AddCommand(newVersionCmd())

	return root.ExecuteContext(context.Background())
}
