package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/cardscan/internal/session"
)

func newBatchCmd(st *state) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Capture every card image under a directory",
		Long: `Walks the directory, processes supported images on a worker pool and adds
each card to the store. Identical files are captured once.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := st.requireLocal("batch"); err != nil {
				return err
			}
			if workers > 0 {
				st.cfg.Ingest.Workers = workers
			}
			a, err := st.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			results, stats, err := a.Ingestor.IngestDirectory(cmd.Context(), session.DefaultID, args[0])
			for _, r := range results {
				switch {
				case r.Err != "":
					fmt.Fprintf(cmd.ErrOrStderr(), "FAIL %s: %s\n", r.Path, r.Err)
				case r.Deduplicated:
					fmt.Fprintf(cmd.OutOrStdout(), "DUP  %s\n", r.Path)
				default:
					fmt.Fprintf(cmd.OutOrStdout(), "OK   %s -> %s (%s)\n", r.Path, r.Capture.Card.Name, r.Capture.Source)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "matched=%d ok=%d duplicates=%d failed=%d\n",
				stats.Matched, stats.Succeeded, stats.Deduplicated, stats.Failed)
			return err
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "worker count (default from config)")
	return cmd
}
