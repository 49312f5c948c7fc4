package main

import (
	"context"
	"net"
	"os/signal"
	"syscall"

	"biblioteca-api/internal/config"
	"biblioteca-api/internal/db"
	"biblioteca-api/internal/logging"
	"biblioteca-api/internal/recommend"
	"biblioteca-api/internal/repository"
	"biblioteca-api/internal/trainnode"
)

// Nodo entrenador: recibe tareas por TCP, entrena el K-Means contra Mongo
// y deja el artefacto en MODEL_DIR (compartido con la API).
func main() {
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db.InitMongo(cfg)

	catalog := repository.NewCatalogRepository(db.DB())
	engine := recommend.NewEngine(
		catalog,
		repository.NewUserRepository(db.DB()),
		repository.NewBookRepository(db.DB()),
		recommend.NewFileStore(cfg.ModelDir),
		cfg.DefaultClusters,
	)

	ln, err := net.Listen("tcp", cfg.TrainerAddr)
	if err != nil {
		logging.Fatal().Err(err).Str("addr", cfg.TrainerAddr).Msg("[trainer] no se pudo escuchar")
	}
	logging.Info().Str("node", cfg.NodeID).Str("addr", cfg.TrainerAddr).Str("modelDir", cfg.ModelDir).Msg("[trainer] escuchando")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := trainnode.Serve(ctx, ln, cfg.NodeID, engine); err != nil {
		logging.Error().Err(err).Msg("[trainer] serve terminó con error")
	}

	if err := db.Disconnect(context.Background()); err != nil {
		logging.Warn().Err(err).Msg("[mongo] error al desconectar")
	}
	logging.Info().Msg("[trainer] apagado")
}
