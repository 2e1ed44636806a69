package main

import (
	"fmt"
	"log"

	"certcycle/internal/config"
	"certcycle/internal/database"
	"certcycle/internal/logging"
	"certcycle/internal/server"
)

func main() {
	cfg := config.Load()
	logging.SetLevel(cfg.LogLevel)
	database.Init(cfg.DBDSN)

	r := server.NewRouter(cfg)

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("starting server on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
