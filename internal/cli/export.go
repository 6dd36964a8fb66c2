package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/cardscan/constants"
)

func newExportCmd(st *state) *cobra.Command {
	var (
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the card list as JSON, CSV, XLSX or Parquet",
		Example: `  cardscan export --format csv
  cardscan export --out contacts.xlsx
  cardscan export --format json --out -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = string(constants.FormatJSON)
				if out != "" && out != "-" {
					if f, ok := constants.ParseExportFormat(out); ok {
						format = string(f)
					}
				}
			}
			b, release, err := st.openBackend(cmd.Context())
			defer release()
			if err != nil {
				return err
			}
			data, filename, err := b.Export(cmd.Context(), format)
			if err != nil {
				return err
			}
			if out == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if out == "" {
				out = filename
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "json | csv | xlsx | parquet (default from --out, else json)")
	cmd.Flags().StringVarP(&out, "out", "o", "", `output path; "-" writes to stdout (default cards.<format>)`)
	return cmd
}
