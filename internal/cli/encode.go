package cli

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/tachyon-beep/streamenc"
)

// sampleReport is encoded by the encode command. Generated is a
// Deferred that resolves on its own goroutine a moment after encoding
// starts, and Items is a RecordSource fed from a channel — together
// they exercise the asynchronous-suspension paths that a plain
// encoding/json.Marshal call could never reach.
type sampleReport struct {
	Name      string                 `json:"name"`
	Generated streamenc.Deferred     `json:"generatedAt"`
	Items     streamenc.RecordSource `json:"items"`
}

func newEncodeCmd() *cobra.Command {
	var indent int

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a built-in sample value graph to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := loggerFromContext(cmd.Context())

			deferred, resolve, _ := streamenc.NewDeferred()
			go func() {
				time.Sleep(5 * time.Millisecond)
				resolve(time.Now().UTC().Format(time.RFC3339))
			}()

			items := make(chan any)
			go func() {
				defer close(items)
				for i := 1; i <= 3; i++ {
					items <- map[string]any{"index": i, "ok": true}
				}
			}()

			report := sampleReport{
				Name:      "sample",
				Generated: deferred,
				Items:     streamenc.NewChannelRecordSource(items, nil),
			}

			opts := []streamenc.Option{}
			if indent > 0 {
				opts = append(opts, streamenc.WithIndentSpaces(indent))
			}
			enc := streamenc.New(report, opts...)

			n, err := io.Copy(cmd.OutOrStdout(), enc)
			if err != nil {
				return err
			}
			log.Debugf("wrote %d bytes", n)
			return nil
		},
	}

	cmd.Flags().IntVar(&indent, "indent", 0, "pretty-print with this many spaces per level (0 disables)")
	return cmd
}
