package main

import (
	"context"
	"log"

	"maintenance-qa-be/internal/bootstrap"
	"maintenance-qa-be/internal/config"
	"maintenance-qa-be/internal/server"
	"maintenance-qa-be/internal/tracer"
	"maintenance-qa-be/pkg/database"
)

func main() {
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	// Background services
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()
	go container.Retriever.RunRefresh(context.Background(), cfg.Pipeline.RetrieverRefresh)

	srv := server.New(cfg, container)

	log.Fatal(srv.Run())
}
