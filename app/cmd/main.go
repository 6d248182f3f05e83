package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"docqa/app/server"
	"docqa/config"
	"docqa/logger"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment as is")
	}

	cfg := config.Load()
	zl := logger.New(cfg.LogFile, cfg.Prod)
	defer zl.Sync()

	s := server.NewServer(cfg, zl)

	go s.Run()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	<-sigch
	zl.Info("received shutdown signal, shutting down server")
	s.Stop()
}
