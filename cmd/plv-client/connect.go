package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gear6io/plvclient/client"
	"github.com/gear6io/plvclient/client/config"
	"github.com/gear6io/plvclient/client/display"
	"github.com/gear6io/plvclient/client/metrics"
	"github.com/gear6io/plvclient/pkg/pixmap"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type connectFlags struct {
	server  string
	viewer  string
	archive bool
}

func newConnectCommand(flags *globalFlags) *cobra.Command {
	cf := &connectFlags{}

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Connect to a pipeline server and receive frames until it disconnects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if err := cf.apply(cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := setupLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runConnect(ctx, cfg, log.Logger)
		},
	}

	cmd.Flags().StringVar(&cf.server, "server", "", "server address as host:port")
	cmd.Flags().StringVar(&cf.viewer, "viewer", "", "serve the latest frame over HTTP on this address")
	cmd.Flags().BoolVar(&cf.archive, "archive", false, "upload decoded frames to the configured bucket")
	return cmd
}

func (cf *connectFlags) apply(cfg *config.Config) error {
	if cf.server != "" {
		if err := cfg.SetServerAddr(cf.server); err != nil {
			return err
		}
	}
	if cf.viewer != "" {
		cfg.Viewer.Enabled = true
		cfg.Viewer.Address = cf.viewer
	}
	if cf.archive {
		cfg.Archive.Enabled = true
	}
	return nil
}

func runConnect(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(metrics.WithRegistry(registry))

	latest := display.NewLatest()
	sinks := display.Fanout{latest, statusPrinter{}}

	var archive *display.Archive
	if cfg.Archive.Enabled {
		mc, err := display.NewMinioClient(cfg.Archive)
		if err != nil {
			return err
		}
		archive = display.NewArchive(mc, cfg.Archive, m, logger)
		defer archive.Close()

		setupCtx, cancel := context.WithTimeout(ctx, cfg.Server.DialTimeout)
		err = archive.EnsureBucket(setupCtx)
		cancel()
		if err != nil {
			return err
		}
		sinks = append(sinks, archive)
	}

	if cfg.Viewer.Enabled {
		viewer := display.NewViewer(latest, registry, logger)
		if err := viewer.Start(cfg.Viewer.Address); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := viewer.Shutdown(shutdownCtx); err != nil {
				logger.Warn().Err(err).Msg("Viewer shutdown failed")
			}
		}()
		pterm.Info.Printfln("Viewer listening on http://%s/frame.png", viewer.Addr())
	}

	c, err := client.New(cfg, sinks, logger, client.WithMetrics(m))
	if err != nil {
		return err
	}
	defer c.Close()

	started := time.Now()
	if err := c.Connect(ctx); err != nil {
		return err
	}
	if archive != nil {
		archive.SetSession(c.SessionID())
	}

	runErr := c.Run(ctx)
	printSummary(c, cfg, time.Since(started))
	return runErr
}

// statusPrinter echoes status changes to the terminal.
type statusPrinter struct{}

func (statusPrinter) ShowImage(*pixmap.Image) {}

func (statusPrinter) ShowStatus(status string) {
	switch status {
	case client.StatusConnected:
		pterm.Success.Println(status)
	case client.StatusDisconnected:
		pterm.Info.Println(status)
	default:
		pterm.Error.Println(status)
	}
}

func printSummary(c *client.Client, cfg *config.Config, elapsed time.Duration) {
	stats := c.Stats()
	data := pterm.TableData{
		{"Session", "Server", "Duration", "Bytes", "Frames", "Acks", "Corrupt"},
		{
			c.SessionID(),
			cfg.ServerAddr(),
			elapsed.Round(time.Millisecond).String(),
			strconv.FormatUint(stats.BytesReceived, 10),
			strconv.FormatUint(stats.FramesRouted, 10),
			strconv.FormatUint(stats.AcksSent, 10),
			strconv.FormatUint(stats.CorruptFrames, 10),
		},
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		pterm.Error.Println(err)
	}
}
