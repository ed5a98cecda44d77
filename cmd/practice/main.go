package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"example.com/dictation/internal/api"
	"example.com/dictation/internal/app"
	"example.com/dictation/internal/config"
	"example.com/dictation/internal/credentials"
	"example.com/dictation/internal/practice"
)

func main() {
	lesson := flag.Int("lesson", 0, "lesson id to practice")
	flag.Parse()
	if *lesson <= 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	level, _ := cfg.LogLevel()
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := api.New(cfg.API.BaseURL, cfg.API.Timeout, log)

	// Reuse the multiplayer client's guest token when there is one.
	store, closeStore, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Warn("credential store unavailable, continuing anonymously", "err", err)
	} else {
		defer closeStore()
		c, err := store.Load(ctx)
		switch {
		case err == nil:
			client = client.WithToken(c.Token)
		case !errors.Is(err, credentials.ErrNotFound):
			log.Warn("failed to load credentials", "err", err)
		}
	}

	if _, err := practice.Run(ctx, client, *lesson, os.Stdin, os.Stdout); err != nil {
		log.Error("practice", "lesson", *lesson, "err", err)
		os.Exit(1)
	}
}
