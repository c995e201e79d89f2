// Package cli implements the bidflow command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/bidflow/internal/core/domain"
	"github.com/custodia-labs/bidflow/internal/core/ports/driving"
	"github.com/custodia-labs/bidflow/internal/logger"
)

// version is set at build time.
var version = "dev"

// Services are the driving ports the commands call into.
type Services struct {
	Proposal driving.ProposalService
	Settings driving.SettingsService

	// WatchPrompts, when set, reloads prompt overrides until the context
	// ends. Server commands run it in the background.
	WatchPrompts func(ctx context.Context) error

	// Close releases adapters (stage cache, model client).
	Close func() error
}

// Bootstrap builds the services once global flags are parsed.
type Bootstrap func(configDir string) (*Services, error)

var (
	proposalService driving.ProposalService
	settingsService driving.SettingsService
	promptWatcher   func(ctx context.Context) error
	closeServices   func() error

	bootstrap Bootstrap
)

// Global flags.
var (
	verbose   bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "bidflow",
	Short: "Turn tender documents into proposals",
	Long: `BidFlow reads an RFP or tender document, extracts its key requirements,
audits them against your business profile and drafts a proposal.

Configure a model provider first:
  bidflow settings llm`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		logger.Sync()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug output")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Configuration directory (default ~/.bidflow)")
}

// Execute runs the root command with the given build version and bootstrap.
func Execute(buildVersion string, b Bootstrap) error {
	if buildVersion != "" {
		version = buildVersion
	}
	bootstrap = b

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer func() {
		if closeServices != nil {
			if err := closeServices(); err != nil {
				logger.Warnw("closing services", "error", err)
			}
		}
	}()

	return rootCmd.ExecuteContext(ctx)
}

// initServices applies global flags and builds the services unless they
// are already set.
func initServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd == versionCmd || bootstrap == nil || proposalService != nil || settingsService != nil {
		return nil
	}

	svcs, err := bootstrap(configDir)
	if err != nil {
		return fmt.Errorf("initialise: %w", err)
	}
	proposalService = svcs.Proposal
	settingsService = svcs.Settings
	promptWatcher = svcs.WatchPrompts
	closeServices = svcs.Close
	return nil
}

// explain adds a remediation hint to errors a user can fix from the CLI.
func explain(err error) error {
	switch {
	case errors.Is(err, domain.ErrLLMUnavailable), errors.Is(err, domain.ErrAuth):
		return fmt.Errorf("%w\nRun 'bidflow settings llm' to configure the model provider", err)
	case errors.Is(err, domain.ErrRateLimited):
		return fmt.Errorf("%w\nSet 'llm.requests_per_minute' to pace requests", err)
	case errors.Is(err, domain.ErrEmptyDocument):
		return fmt.Errorf("%w\nScanned PDFs need OCR before they can be read", err)
	default:
		return err
	}
}
