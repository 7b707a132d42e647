package display

import (
	"bytes"
	"context"
	"image/png"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// StatusResponse is the body of GET /status
type StatusResponse struct {
	Status   string `json:"status"`
	Sequence uint64 `json:"sequence"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	Updated  string `json:"updated,omitempty"`
}

// Viewer serves the contents of a Latest store over HTTP
type Viewer struct {
	latest *Latest
	app    *fiber.App
	logger zerolog.Logger

	mu   sync.Mutex
	addr net.Addr
	wg   sync.WaitGroup
}

// NewViewer creates a viewer over latest. A nil gatherer disables /metrics.
func NewViewer(latest *Latest, gatherer prometheus.Gatherer, logger zerolog.Logger) *Viewer {
	v := &Viewer{
		latest: latest,
		logger: logger.With().Str("component", "viewer").Logger(),
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true,
			AppName:               "plv-client viewer",
		}),
	}

	v.app.Get("/frame.png", v.handleFrame)
	v.app.Get("/status", v.handleStatus)
	v.app.Get("/healthz", v.handleHealth)
	if gatherer != nil {
		v.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	return v
}

// App exposes the fiber app, mainly for app.Test
func (v *Viewer) App() *fiber.App {
	return v.app
}

// Start listens on addr and serves in the background
func (v *Viewer) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.addr = ln.Addr()
	v.mu.Unlock()

	v.logger.Info().Str("address", ln.Addr().String()).Msg("Starting viewer")

	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		if err := v.app.Listener(ln); err != nil {
			v.logger.Error().Err(err).Msg("Viewer server error")
		}
	}()
	return nil
}

// Addr returns the bound address once started
func (v *Viewer) Addr() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.addr == nil {
		return ""
	}
	return v.addr.String()
}

// Shutdown stops the server and waits for it to exit
func (v *Viewer) Shutdown(ctx context.Context) error {
	err := v.app.ShutdownWithContext(ctx)
	v.wg.Wait()
	return err
}

func (v *Viewer) handleFrame(c *fiber.Ctx) error {
	snap := v.latest.Snapshot()
	if snap.Image == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, snap.Image); err != nil {
		v.logger.Error().Err(err).Msg("Failed to encode frame")
		return c.Status(fiber.StatusInternalServerError).SendString("failed to encode frame")
	}

	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Set("X-Frame-Sequence", strconv.FormatUint(snap.Sequence, 10))
	return c.Send(buf.Bytes())
}

func (v *Viewer) handleStatus(c *fiber.Ctx) error {
	snap := v.latest.Snapshot()
	resp := StatusResponse{
		Status:   snap.Status,
		Sequence: snap.Sequence,
	}
	if snap.Image != nil {
		resp.Width = snap.Image.Width
		resp.Height = snap.Image.Height
		resp.Format = snap.Image.Format.String()
	}
	if !snap.Updated.IsZero() {
		resp.Updated = snap.Updated.UTC().Format(time.RFC3339)
	}
	return c.JSON(resp)
}

func (v *Viewer) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
