package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "biblioteca-api/docs" // swagger docs

	"biblioteca-api/internal/cache"
	"biblioteca-api/internal/config"
	"biblioteca-api/internal/db"
	"biblioteca-api/internal/googlebooks"
	"biblioteca-api/internal/handler"
	"biblioteca-api/internal/logging"
	"biblioteca-api/internal/recommend"
	"biblioteca-api/internal/repository"
	"biblioteca-api/internal/service"
)

// @title Biblioteca API
// @version 1.0
// @description Biblioteca digital con recomendaciones K-Means (Mongo, Redis)
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	// Mongo y Redis
	db.InitMongo(cfg)
	cache.InitRedis(cfg)

	// repos
	userRepo := repository.NewUserRepository(db.DB())
	catalogRepo := repository.NewCatalogRepository(db.DB())
	bookRepo := repository.NewBookRepository(db.DB())
	readingRepo := repository.NewReadingRepository(db.DB())
	recRepo := repository.NewRecommendationRepository(db.DB())

	// motor K-Means; el artefacto vive en MODEL_DIR (compartido con los nodos)
	engine := recommend.NewEngine(catalogRepo, userRepo, bookRepo, recommend.NewFileStore(cfg.ModelDir), cfg.DefaultClusters)
	if snap, err := engine.Reload(context.Background()); err != nil {
		logging.Info().Err(err).Msg("[recommend] sin modelo guardado, se entrena en el primer uso")
	} else {
		logging.Info().Str("version", snap.Version()).Msg("[recommend] modelo cargado")
	}

	// services
	authSvc := service.NewAuthService(userRepo, readingRepo, cfg.JWTSecret)
	catalogSvc := service.NewCatalogService(catalogRepo, userRepo)
	bookSvc := service.NewBookService(bookRepo, catalogRepo, readingRepo, googlebooks.NewClient(cfg.GoogleBooksAPIKey))
	prefSvc := service.NewPreferenceService(userRepo, catalogRepo)
	readingSvc := service.NewReadingService(readingRepo, bookRepo)
	recSvc := service.NewRecommendService(engine, recRepo, cfg.RecCacheTTL)
	modelSvc := service.NewModelService(engine, cfg.TrainerAddrs)

	// datos base
	bootCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := catalogSvc.SeedLevels(bootCtx); err != nil {
		logging.Warn().Err(err).Msg("[bootstrap] no se pudieron sembrar niveles")
	}
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := authSvc.BootstrapAdmin(bootCtx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logging.Warn().Err(err).Msg("[bootstrap] no se pudo crear el admin inicial")
		}
	}
	cancel()

	if len(cfg.TrainerAddrs) > 0 {
		logging.Info().Strs("nodes", cfg.TrainerAddrs).Msg("[recommend] entrenamiento delegado a nodos")
	}

	r := handler.NewRouter(handler.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Catalog:    handler.NewCatalogHandler(catalogSvc),
		Books:      handler.NewBookHandler(bookSvc),
		Preference: handler.NewPreferenceHandler(prefSvc),
		Readings:   handler.NewReadingHandler(readingSvc),
		Recommend:  handler.NewRecommendHandler(recSvc),
		Model:      handler.NewModelHandler(modelSvc),
	}, handler.RouterConfig{
		JWTSecret:     cfg.JWTSecret,
		CORSOrigins:   cfg.CORSOrigins,
		AuthRateLimit: cfg.AuthRateLimit,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logging.Info().Str("port", cfg.HTTPPort).Msg("[http] escuchando")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("[http] error del servidor")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("[http] apagando")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Warn().Err(err).Msg("[http] shutdown con error")
	}
	if err := cache.Close(); err != nil {
		logging.Warn().Err(err).Msg("[redis] error al cerrar")
	}
	if err := db.Disconnect(shutdownCtx); err != nil {
		logging.Warn().Err(err).Msg("[mongo] error al desconectar")
	}
}
