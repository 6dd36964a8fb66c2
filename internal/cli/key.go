package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/cardscan/constants"
)

var errKeyNeedsRemote = errors.New("local runs read the key from AI_API_KEY and AI_PROVIDER; use --remote to manage a daemon session")

func newKeyCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Inspect or manage the AI provider credential",
	}
	cmd.AddCommand(newKeyCheckCmd(st), newKeySetCmd(st), newKeyClearCmd(st))
	return cmd
}

func newKeyCheckCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the configured key against the provider's format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, release, err := st.openBackend(cmd.Context())
			defer release()
			if err != nil {
				return err
			}
			valid, msg, err := b.ValidateCredential(cmd.Context())
			if err != nil {
				return err
			}
			mark := "✗"
			if valid {
				mark = "✓"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", mark, msg)
			return nil
		},
	}
}

func newKeySetCmd(st *state) *cobra.Command {
	var provider string
	cmd := &cobra.Command{
		Use:   "set [key]",
		Short: "Set the provider and key of a daemon session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if st.remote == "" {
				return errKeyNeedsRemote
			}
			if provider != "" {
				if _, ok := constants.CanonicalizeProvider(provider); !ok {
					return fmt.Errorf("unknown provider %q (want one of %v)", provider, constants.ProvidersAsStringSlice())
				}
			}
			key := ""
			if len(args) == 1 {
				key = args[0]
			}
			client, release, err := st.dialRemote()
			if err != nil {
				return err
			}
			defer release()
			if err := client.SetCredential(cmd.Context(), provider, key); err != nil {
				return err
			}
			_, msg, err := client.ValidateCredential(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	cmd.Flags().StringVarP(&provider, "provider", "p", "", "openai | anthropic | gemini")
	return cmd
}

func newKeyClearCmd(st *state) *cobra.Command {
	var end bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget the key of a daemon session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if st.remote == "" {
				return errKeyNeedsRemote
			}
			client, release, err := st.dialRemote()
			if err != nil {
				return err
			}
			defer release()
			if end {
				return client.EndSession(cmd.Context())
			}
			return client.ClearCredential(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&end, "end", false, "end the session, dropping its provider selection as well")
	return cmd
}
