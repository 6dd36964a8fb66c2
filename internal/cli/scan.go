package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/cardscan/internal/common"
)

func newScanCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <image>...",
		Short: "Capture one or more card images",
		Example: `  # Capture a single photo
  cardscan scan ~/Pictures/card.jpg

  # Capture through a running daemon
  cardscan scan --remote localhost:8080 card1.png card2.png`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, release, err := st.openBackend(ctx)
			defer release()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, fmt.Errorf("%w: %v", common.ErrAcquisition, err))
					continue
				}
				card, source, err := b.Capture(ctx, data, filepath.Ext(path))
				if err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(out, "%s (%s)\n", path, source)
				printCard(out, card)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d captures failed", failed, len(args))
			}
			return nil
		},
	}
	return cmd
}
