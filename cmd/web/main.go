// cmd/web/main.go
//
// Formgate – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Start daily rotating logger (tees to console when running in a TTY).
//
//  2. Load config overlays (conf/.env → conf/global.yaml → FORMGATE_*)
//     and resolve any vault: secret references.
//
//  3. Open the optional GeoLite2 database and MySQL mirror.
//
//  4. Build the two endpoint handlers and mount them on a chi router
//     behind the request-enrichment and security-header middleware,
//     plus the Prometheus /metrics endpoint.
//
//  5. Serve with hardened timeouts; SIGINT/SIGTERM drain in-flight
//     requests before exit.
//
// The two endpoints share no state: intake owns the CSV store and the
// sheet sink, notify owns the transport and the bounded send log.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/mrdlabs/formgate/internal/config"
	"github.com/mrdlabs/formgate/internal/intake"
	"github.com/mrdlabs/formgate/internal/logger"
	"github.com/mrdlabs/formgate/internal/mail"
	"github.com/mrdlabs/formgate/internal/middleware"
	"github.com/mrdlabs/formgate/internal/notify"
	"github.com/mrdlabs/formgate/internal/requestinfo"
	"github.com/mrdlabs/formgate/internal/server"
	"github.com/mrdlabs/formgate/internal/sink"
	"github.com/mrdlabs/formgate/internal/store"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// resolvePath anchors relative config paths at the discovered root.
func resolvePath(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

func main() {
	wd, _ := os.Getwd()
	logg, err := logger.New(wd, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Fatalw("config load failed", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.ResolveSecrets(ctx, cfg); err != nil {
		logg.Fatalw("secret resolution failed", "err", err)
	}

	//
	// ── 1.  Optional enrichment and mirror back-ends ───────────────────
	//
	if cfg.Geo.DBPath != "" {
		if err := requestinfo.InitGeo(resolvePath(cfg.Paths.Root, cfg.Geo.DBPath)); err != nil {
			logg.Warnw("geo database unavailable, enrichment disabled", "err", err)
		}
	}

	var mirror *store.Mirror
	if cfg.Database.MirrorDSN != "" {
		mirror, err = store.OpenMirror(cfg.Database.MirrorDSN)
		if err != nil {
			logg.Fatalw("mirror DB connect failed", "err", err)
		}
		defer mirror.Close()
		logg.Infow("mirror DB online")
	}

	//
	// ── 2.  Intake wiring: store + sheet sink ──────────────────────────
	//
	st := store.NewCSV(resolvePath(cfg.Paths.Root, cfg.Store.SubmissionsPath))
	sheets := sink.New(cfg.Sink.URL, time.Duration(cfg.Sink.TimeoutSeconds)*time.Second)
	if !sheets.Enabled() {
		logg.Warnw("sheet webhook not configured, forwards disabled")
	}

	//
	// ── 3.  Notify wiring: transport + bounded send log ────────────────
	//
	var transport mail.Transport
	switch cfg.Mail.Transport {
	case "ses":
		transport, err = mail.NewSESTransport(ctx, mail.SESConfig{
			Region:    cfg.Mail.SES.Region,
			AccessKey: cfg.Mail.SES.AccessKey,
			SecretKey: cfg.Mail.SES.SecretKey,
		})
		if err != nil {
			logg.Fatalw("SES transport init failed", "err", err)
		}
	default:
		transport = mail.LogTransport{}
	}
	sendLog := mail.NewSendLog(resolvePath(cfg.Paths.Root, cfg.Store.EmailLogPath))

	//
	// ── 4.  Router ─────────────────────────────────────────────────────
	//
	r := chi.NewRouter()
	r.Use(requestinfo.Enrich)
	r.Use(middleware.Security)

	r.Handle("/metrics", promhttp.Handler())
	// The endpoint handlers own their method and preflight responses,
	// so they are mounted for all verbs.
	r.Handle("/api/submit", intake.NewHandler(st, mirror, sheets))
	r.Handle("/api/send-email", notify.NewHandler(transport, sendLog, cfg.Mail.From))

	//
	// ── 5.  Serve until signalled ──────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, r)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logg.Infow("listening", "addr", cfg.HTTP.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logg.Fatalw("server error", "err", err)
	}
	logg.Infow("shutdown complete")
}
