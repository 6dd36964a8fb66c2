package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/entity"
)

func printCard(w io.Writer, c entity.Card) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, f := range entity.Fields() {
		fmt.Fprintf(tw, "  %s\t%s\n", f, strings.ReplaceAll(c.Text(f), "\n", " / "))
	}
	_ = tw.Flush()
}

func newListCmd(st *state) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show stored cards, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, release, err := st.openBackend(cmd.Context())
			defer release()
			if err != nil {
				return err
			}
			list, err := b.ListCards(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}
			if len(list) == 0 {
				fmt.Fprintln(out, "no cards yet")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tNAME\tPHONES\tEMAIL\tOTHER")
			for i, c := range list {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i,
					oneLine(c.Name),
					oneLine(strings.Join(c.Phones, constants.ListJoiner)),
					c.Email,
					oneLine(strings.Join(c.Other, constants.ListJoiner)))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored JSON document")
	return cmd
}

func oneLine(s string) string { return strings.ReplaceAll(s, "\n", " / ") }

func parseIndex(arg string) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%w: index %q is not a number", common.ErrInvalidInput, arg)
	}
	return i, nil
}

func newEditCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <index> <field> <value>",
		Short: "Change one field of a stored card",
		Long: `Fields are name, phones, email and other. List fields take several values
separated by ";".`,
		Example: `  cardscan edit 0 phones "+1 415 555 0100; +1 415 555 0199"`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			field, ok := entity.ParseField(args[1])
			if !ok {
				return fmt.Errorf("%w: unknown field %q", common.ErrInvalidInput, args[1])
			}
			b, release, err := st.openBackend(cmd.Context())
			defer release()
			if err != nil {
				return err
			}
			if err := b.UpdateCard(cmd.Context(), index, field, args[2]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated card %d %s\n", index, field)
			return nil
		},
	}
	return cmd
}

func newDeleteCmd(st *state) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete <index>",
		Aliases: []string{"rm"},
		Short:   "Remove a stored card",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			b, release, err := st.openBackend(cmd.Context())
			defer release()
			if err != nil {
				return err
			}
			if !yes {
				fmt.Fprintf(cmd.OutOrStdout(), "Delete card %d? [y/N] ", index)
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "kept")
					return nil
				}
			}
			if err := b.DeleteCard(cmd.Context(), index); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted card %d\n", index)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
