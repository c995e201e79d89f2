package cli

import (
	"context"
	"errors"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/bidflow/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/bidflow/internal/core/services"
	"github.com/custodia-labs/bidflow/internal/logger"
)

// DefaultServeAddr is the REST listen address when --addr is not given.
const DefaultServeAddr = "127.0.0.1:8080"

// portSearchRange bounds the fallback search when the default port is taken.
const portSearchRange = 20

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API",
	Long: `Serve the pipelines over HTTP:

  POST /v1/extract    multipart field "document"
  POST /v1/proposal   multipart field "document"
  GET  /v1/profile
  GET  /healthz

When the default address is busy the next free port is used.`,
	RunE: runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default "+DefaultServeAddr+")")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if proposalService == nil {
		return errNoProposalService
	}

	addr := serveAddr
	if addr == "" {
		var err error
		addr, err = defaultListenAddr()
		if err != nil {
			return err
		}
	}

	watchPrompts(cmd)

	server := httpapi.NewServer(httpapi.RouterConfig{Proposal: proposalService})
	cmd.PrintErrf("Listening on http://%s\n", addr)
	return server.Run(cmd.Context(), addr)
}

// defaultListenAddr returns DefaultServeAddr, or the next free port on the
// same host when it is taken.
func defaultListenAddr() (string, error) {
	host, portStr, err := net.SplitHostPort(DefaultServeAddr)
	if err != nil {
		return "", err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", err
	}
	return services.FindAvailableAddr(host, port, port+portSearchRange)
}

// watchPrompts reloads prompt overrides in the background until the
// command's context ends.
func watchPrompts(cmd *cobra.Command) {
	if promptWatcher == nil {
		return
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		if err := promptWatcher(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warnw("prompt watcher stopped", "error", err)
		}
	}()
}
