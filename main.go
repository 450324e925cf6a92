package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"keubot/bot"
	"keubot/config"
	"keubot/pkg/chart"
	"keubot/pkg/geo"
	"keubot/pkg/logger"
	"keubot/pkg/media"
	"keubot/pkg/ocr"
	"keubot/pkg/rbac"
	"keubot/pkg/session"
	"keubot/pkg/stats"
	"keubot/transport"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// `keubot migrate` runs AutoMigrate and seeding, then exits.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		err = migrate(ctx, cfg, log)
	} else {
		err = run(ctx, stop, cfg, log)
	}
	if err != nil {
		log.Error("exiting", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func migrate(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	st, err := openStore(cfg.Database, false, log)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Migrate(); err != nil {
		return err
	}
	if err := seed(ctx, st, rbac.NewResolver(st), cfg.Admin.Numbers, log); err != nil {
		return err
	}
	log.Info("migration and seeding completed")
	return nil
}

func run(ctx context.Context, stop context.CancelFunc, cfg *config.Config, log *zap.Logger) error {
	st, err := openStore(cfg.Database, cfg.Database.AutoMigrate, log)
	if err != nil {
		return err
	}
	defer st.Close()

	roles := rbac.NewResolver(st)
	if err := seed(ctx, st, roles, cfg.Admin.Numbers, log); err != nil {
		return err
	}
	if err := ensureDirs(cfg); err != nil {
		return err
	}

	var mirror stats.Mirror
	if cfg.Redis.Addr != "" {
		m, err := stats.NewRedisMirror(ctx, cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			log.Warn("redis unavailable, statistics kept in memory only", zap.Error(err))
		} else {
			defer m.Close()
			mirror = m
		}
	}
	counters := stats.New(mirror, log)
	sessions := session.New(cfg.Session.Timeout, session.WithLogger(log))

	sources := []media.Source{media.Inline{}, &media.HTTP{Token: cfg.Gateway.Token}}
	if cfg.Media.SpoolDir != "" {
		sources = append(sources, &media.Spool{Dir: cfg.Media.SpoolDir})
	}
	if cfg.Gateway.URL == "" {
		log.Warn("gateway.url is not set, replies cannot be delivered")
	}

	b := bot.New(bot.Config{
		Repo:     st,
		Roles:    roles,
		Sessions: sessions,
		Sender:   transport.NewGateway(cfg.Gateway.URL, cfg.Gateway.Token, cfg.Media.Timeout),
		OCR:      ocr.NewEngine(cfg.OCR.Languages, cfg.OCR.LowConfidence, log),
		Charts:   chart.NewRenderer(cfg.Chart.URL, cfg.Chart.Width, cfg.Chart.Height),
		Media:    media.NewDownloader(cfg.Media.Timeout, log, sources...),
		Photos:   media.NewPhotoStore(attendanceDir(cfg)),
		Stats:    counters,
		Office: geo.Fence{
			Name:   cfg.Office.Name,
			Center: geo.Point{Latitude: cfg.Office.Latitude, Longitude: cfg.Office.Longitude},
			Radius: cfg.Office.Radius,
		},
		LowConfidence: cfg.OCR.LowConfidence,
		OCRTimeout:    cfg.OCR.Timeout,
		ChartTimeout:  cfg.Chart.Timeout,
		Log:           log,
	})

	go sessions.Run(ctx, cfg.Session.SweepInterval)
	flushed := make(chan struct{})
	go func() {
		counters.Run(ctx, cfg.Stats.FlushInterval)
		close(flushed)
	}()

	if !log.Core().Enabled(zapcore.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: transport.NewRouter(transport.Options{
			Handler:  b,
			Secret:   []byte(cfg.Webhook.Secret),
			Sessions: sessions,
			Log:      log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errc:
		stop()
		<-flushed
		return fmt.Errorf("serve: %w", err)
	}
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	<-flushed
	return nil
}
