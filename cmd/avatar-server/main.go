// Command avatar-server runs the conversational avatar: the JSON chat API on
// one port and the embeddable widget on another.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"avatar-agent/internal/agent"
	"avatar-agent/internal/config"
	"avatar-agent/internal/conversation"
	"avatar-agent/internal/logger"
	"avatar-agent/internal/notify"
	"avatar-agent/internal/portfolio"
	"avatar-agent/internal/profile"
	"avatar-agent/internal/server"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func run(configPath string) error {
	secrets, err := config.LoadSecrets()
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Log); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	persona := profile.Load(cfg.Profile)
	store := portfolio.NewStore(cfg.Portfolio.ProjectsCSV, cfg.Portfolio.MetadataJSON)
	notifier := notify.FromCredentials(secrets.PushoverToken, secrets.PushoverUser)

	chatModel, err := agent.NewChatModel(ctx, cfg.Model, secrets)
	if err != nil {
		return err
	}

	avatar, err := agent.New(ctx, chatModel, agent.NewToolbox(store, notifier), persona)
	if err != nil {
		return err
	}

	sessions, err := conversation.NewManager(ctx, secrets.RedisURL, cfg.Conversation)
	if err != nil {
		return err
	}
	defer sessions.Close()

	logger.Info().
		Str("provider", cfg.Model.Provider).
		Str("model", cfg.Model.Name).
		Int("projects", store.Size()).
		Msg("avatar ready")

	api := server.NewAPI(avatar, sessions, store)
	return server.New(cfg.Server, api).Run(ctx)
}
