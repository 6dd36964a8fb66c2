package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/cardscan/internal/entity"
	"github.com/joseph-ayodele/cardscan/internal/ingest"
	"github.com/joseph-ayodele/cardscan/internal/session"
)

func newWatchCmd(st *state) *cobra.Command {
	var initial bool
	cmd := &cobra.Command{
		Use:   "watch <dir>...",
		Short: "Capture card images as they land in a folder",
		Example: `  # Treat a synced phone folder as a scan inbox
  cardscan watch ~/Dropbox/cards --initial`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := st.requireLocal("watch"); err != nil {
				return err
			}
			a, err := st.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			wc := ingest.WatchConfig{
				Roots:       args,
				InitialScan: initial,
				SkipHidden:  st.cfg.Ingest.SkipHidden,
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watching %v (Ctrl+C to stop)\n", args)
			return a.Ingestor.Watch(cmd.Context(), session.DefaultID, wc, func(c entity.Capture, err error) {
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "FAIL %s: %v\n", c.SourcePath, err)
					return
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", c.SourcePath, c.Source)
				printCard(cmd.OutOrStdout(), c.Card)
			})
		},
	}
	cmd.Flags().BoolVar(&initial, "initial", false, "also capture images already in the folder")
	return cmd
}
