package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"skycycle/internal/config"
	"skycycle/internal/server"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "skycycle.yml", "configuration file for the day/night cycle service")
	flag.Parse()

	wrote, err := writeConfigFromEnv(configPath)
	if err != nil {
		log.Fatalf("sync config from environment: %v", err)
	}
	if wrote {
		log.Printf("configuration from environment written to %s", configPath)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := config.WriteDefault(configPath); err != nil {
				log.Fatalf("write default config: %v", err)
			}
			log.Printf("no configuration found, default configuration written to %s", configPath)
			cfg, err = config.Load(configPath)
		}
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	s, err := server.New(cfg)
	if err != nil {
		log.Fatalf("initialise cycle server: %v", err)
	}

	if err := s.Run(ctx); err != nil {
		log.Fatalf("cycle server exited: %v", err)
	}
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
