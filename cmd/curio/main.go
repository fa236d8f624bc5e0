package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	curio "github.com/eringen/curio"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", envOr("CURIO_CONFIG", "curio.yaml"), "path to the site configuration")
	flag.Parse()

	cfg, err := curio.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := curio.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	app := curio.New(cfg, log)
	defer app.Close()

	if err := app.Start(); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
