package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"limeplan/config"
	"limeplan/database"
	"limeplan/pkg/ai"
	"limeplan/pkg/logging"
	"limeplan/pkg/reftables"
	"limeplan/router"

	// Auth + Health
	authCtrlImp "limeplan/pkg/auth/controllerImp"
	healthCtrlImp "limeplan/pkg/health/controllerImp"

	// Parcel
	parcelCtrlImp "limeplan/pkg/parcel/controllerImp"
	parcelRepoImp "limeplan/pkg/parcel/repositoryImp"
	parcelSvcImp "limeplan/pkg/parcel/serviceImp"

	// Sample
	sampleCtrlImp "limeplan/pkg/sample/controllerImp"
	sampleRepoImp "limeplan/pkg/sample/repositoryImp"
	sampleSvcImp "limeplan/pkg/sample/serviceImp"

	// Product
	productCtrlImp "limeplan/pkg/product/controllerImp"
	productRepoImp "limeplan/pkg/product/repositoryImp"
	productSvcImp "limeplan/pkg/product/serviceImp"

	// Plan
	planCtrlImp "limeplan/pkg/plan/controllerImp"
	planRepoImp "limeplan/pkg/plan/repositoryImp"
	planSvcImp "limeplan/pkg/plan/serviceImp"
)

func main() {
	// 1) Config
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// 2) Logger
	lg, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer func() { _ = lg.Sync() }()
	lg.Info("starting", zap.Any("config", cfg.Redacted()))

	// 3) DB + automigrate
	db, err := database.Open(cfg, lg)
	if err != nil {
		lg.Fatal("database", zap.Error(err))
	}

	// 4) Reference tables, loaded once
	tables, err := reftables.Load(reftables.Options{
		TablesPath: cfg.TablesPath,
		LimeCSV:    cfg.LimeTableCSV,
		LimeXLSX:   cfg.LimeTableXLSX,
	})
	if err != nil {
		lg.Fatal("reference tables", zap.Error(err))
	}
	lg.Info("reference tables loaded", zap.String("version", tables.Version))

	// 5) LLM (mock fallback)
	var llm ai.Client
	if cfg.LLMEndpoint != "" && cfg.LLMAPIKey != "" {
		llm = ai.NewOpenAI(cfg.LLMEndpoint, cfg.LLMAPIKey, cfg.LLMModel, lg)
	} else {
		llm = ai.NewMock()
	}

	// 6) Repos/Services
	parcelRepo := parcelRepoImp.New(db)
	sampleRepo := sampleRepoImp.New(db)
	productRepo := productRepoImp.New(db)

	productSvc := productSvcImp.NewProductService(productRepo, lg)
	if seed, err := reftables.SampleProducts(); err != nil {
		lg.Warn("sample catalog", zap.Error(err))
	} else if _, err := productSvc.Seed(seed); err != nil {
		lg.Warn("seed product catalog", zap.Error(err))
	}

	planSvc := planSvcImp.NewPlanService(planSvcImp.Deps{
		Plans:        planRepoImp.New(db),
		Parcels:      parcelRepo,
		Samples:      sampleRepo,
		Products:     productSvc,
		Tables:       tables,
		LLM:          llm,
		Log:          lg,
		HorizonYears: cfg.HorizonYears,
	})

	// 7) Controllers + router
	e := echo.New()
	e.HideBanner = true
	router.New(e, router.Controllers{
		Auth:    authCtrlImp.NewAuthController(),
		Health:  healthCtrlImp.NewHealthCtrl(db, tables.Version),
		Parcel:  parcelCtrlImp.New(parcelSvcImp.NewParcelService(parcelRepo)),
		Sample:  sampleCtrlImp.New(sampleSvcImp.NewSampleService(sampleRepo, parcelRepo, tables.Classifier)),
		Product: productCtrlImp.New(productSvc),
		Plan:    planCtrlImp.New(planSvc),
	}, router.Options{EnableLIFF: cfg.EnableLIFF, AccessLog: cfg.LogLevel == "debug"})

	// 8) Start, stop on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		lg.Info("listening", zap.String("addr", ":"+cfg.Port))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server", zap.Error(err))
		}
	}()
	<-ctx.Done()

	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdown); err != nil {
		lg.Error("shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
