// Package cli implements the cardscan command tree.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/cardscan/internal/app"
	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/session"
)

// state is shared by every subcommand of one invocation.
type state struct {
	configPath string
	remote     string
	sessionID  string

	cfg *common.Config

	// newApp is replaced in tests.
	newApp func(ctx context.Context, cfg *common.Config) (*app.App, error)
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&state{})
}

func newRootCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cardscan",
		Short: "Digitise business cards into a searchable contact list",
		Long: `Cardscan turns photos of business cards into structured contacts.

Each image is cleaned up, run through OCR and parsed into a name, phone
numbers, an email address and other details. An AI provider is used when a
key is configured; otherwise a built-in pattern extractor takes over.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return st.loadConfig()
		},
	}

	cmd.PersistentFlags().StringVar(&st.configPath, "config", "", "YAML config file (default $CARDSCAN_CONFIG)")
	cmd.PersistentFlags().StringVar(&st.remote, "remote", "", "address of a running cardsd; empty works on the local store")
	cmd.PersistentFlags().StringVar(&st.sessionID, "session", session.DefaultID, "credential session used with --remote")

	cmd.AddCommand(
		newScanCmd(st),
		newBatchCmd(st),
		newWatchCmd(st),
		newListCmd(st),
		newEditCmd(st),
		newDeleteCmd(st),
		newExportCmd(st),
		newKeyCmd(st),
	)
	return cmd
}

func (st *state) loadConfig() error {
	var (
		cfg *common.Config
		err error
	)
	if st.configPath != "" {
		cfg, err = common.LoadConfigFrom(st.configPath)
	} else {
		cfg, err = common.LoadConfig()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	st.cfg = cfg
	return nil
}

func (st *state) openApp(ctx context.Context) (*app.App, error) {
	if st.newApp != nil {
		return st.newApp(ctx, st.cfg)
	}
	logger := common.NewLogger(os.Stderr, st.cfg.Log)
	return app.New(ctx, st.cfg, logger, app.Options{})
}

func (st *state) requireLocal(name string) error {
	if st.remote != "" {
		return fmt.Errorf("%s runs against the local store only; drop --remote", name)
	}
	return nil
}
