// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	internal_artifact "github.com/rapidaai/capture/api/capture-api/internal/artifact"
	internal_microphone "github.com/rapidaai/capture/api/capture-api/internal/audio/microphone"
	internal_recorder "github.com/rapidaai/capture/api/capture-api/internal/audio/recorder"
	internal_capture "github.com/rapidaai/capture/api/capture-api/internal/capture"
	internal_page "github.com/rapidaai/capture/api/capture-api/internal/page"
	capture_routers "github.com/rapidaai/capture/api/capture-api/router"
	"github.com/rapidaai/capture/config"
	"github.com/rapidaai/capture/pkg/commons"
	"github.com/rapidaai/capture/pkg/connectors"
	"github.com/rapidaai/capture/pkg/utils"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

type AppRunner struct {
	E       *gin.Engine
	Cfg     *config.AppConfig
	Logger  commons.Logger
	Redis   connectors.RedisConnector
	Page    *internal_page.Page
	Session *internal_capture.Session
	Server  *http.Server
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appRunner := &AppRunner{}
	if err := appRunner.ResolveConfig(); err != nil {
		log.Fatalf("unable to resolve config: %v", err)
	}
	appRunner.Logging()
	defer appRunner.Logger.Sync()

	if err := appRunner.Init(ctx); err != nil {
		appRunner.Logger.Fatalf("unable to initialize capture-api: %v", err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appRunner.Logger.Infof("capture-api listening on %s", appRunner.Cfg.Addr())
		if err := appRunner.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		appRunner.Logger.Infof("shutting down capture-api")
		return appRunner.Close()
	})

	if err := g.Wait(); err != nil {
		appRunner.Logger.Errorf("capture-api stopped with error: %v", err)
		os.Exit(1)
	}
}

func (app *AppRunner) ResolveConfig() error {
	vConfig, err := config.InitConfig()
	if err != nil {
		return err
	}
	cfg, err := config.GetApplicationConfig(vConfig)
	if err != nil {
		return err
	}
	app.Cfg = cfg
	return nil
}

func (app *AppRunner) Logging() {
	logger, err := commons.NewApplicationLogger(
		commons.Name(app.Cfg.Name),
		commons.Path(app.Cfg.LogPath),
		commons.Level(app.Cfg.LogLevel),
		commons.MaxSize(app.Cfg.LogMaxSizeMB),
	)
	if err != nil {
		log.Fatalf("unable to create logger: %v", err)
	}
	app.Logger = logger
}

// Init wires the capture session and its http surface.
func (app *AppRunner) Init(ctx context.Context) error {
	if app.Cfg.ArtifactConfig.Store == internal_artifact.StoreRedis {
		app.Redis = connectors.NewRedisConnector(&app.Cfg.RedisConfig, app.Logger)
		if err := app.Redis.Connect(ctx); err != nil {
			return err
		}
	}

	objects, err := internal_artifact.NewObjectURLStore(&app.Cfg.ArtifactConfig, app.Logger, app.Redis)
	if err != nil {
		return err
	}
	devices, err := internal_microphone.NewMediaDevices(&app.Cfg.CaptureConfig, app.Logger)
	if err != nil {
		return err
	}
	recorders := internal_recorder.Factory(app.Logger,
		internal_recorder.WithTimeslice(app.Cfg.CaptureConfig.Timeslice()),
		internal_recorder.WithFramesPerRead(app.Cfg.CaptureConfig.FramesPerRead),
		internal_recorder.WithEventBufferSize(app.Cfg.CaptureConfig.EventBuffer),
	)

	app.Page = internal_page.NewPage(app.Logger)
	app.Session, err = internal_capture.NewSession(app.Logger, devices, recorders, objects, app.Page.Slots(),
		internal_capture.WithStatusReporter(app.Page),
		internal_capture.WithPublishTimeout(app.Cfg.ArtifactConfig.PublishTimeout()),
	)
	if err != nil {
		return err
	}

	env := utils.FromEnvironmentStr(app.Cfg.Env)
	if env.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	app.Logger.Infof("starting %s %s in %s", app.Cfg.Name, app.Cfg.Version, env.Get())
	app.E = gin.New()
	app.E.Use(gin.Recovery())
	app.E.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		MaxAge:          12 * time.Hour,
	}))
	capture_routers.HealthCheckRoutes(app.Cfg, app.E, app.Logger, app.Redis)
	capture_routers.CaptureApiRoute(app.Cfg, app.E, app.Logger, app.Session, objects, app.Page)

	app.Server = &http.Server{
		Addr:              app.Cfg.Addr(),
		Handler:           app.E,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// Close finalizes any running recording and revokes its object urls before
// the server and connectors go away.
func (app *AppRunner) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := app.Session.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("close capture session: %w", err))
	}
	if err := app.Server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	if app.Redis != nil {
		if err := app.Redis.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("disconnect redis: %w", err))
		}
	}
	return errors.Join(errs...)
}
