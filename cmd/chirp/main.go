package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/agnosto/chirp/api"
	"github.com/agnosto/chirp/cmd"
	"github.com/agnosto/chirp/compose"
	"github.com/agnosto/chirp/config"
	"github.com/agnosto/chirp/db"
	"github.com/agnosto/chirp/db/repository"
	"github.com/agnosto/chirp/db/service"
	"github.com/agnosto/chirp/logger"
	"github.com/agnosto/chirp/notifications"
	"github.com/agnosto/chirp/stream"
	"github.com/agnosto/chirp/timeline"
	"github.com/agnosto/chirp/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
)

const version = "v0.1.0"

func main() {
	flags := cmd.ParseFlags()

	if flags.Version {
		fmt.Printf("chirp version %s\n", version)
		return
	}

	configPath := config.GetConfigPath()
	config.VerifyConfigOnStartup(configPath)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("%v (edit %s)", err, configPath)
	}

	if err := logger.InitLogger(cfg); err != nil {
		log.Fatal(err)
	}
	logger.Logger.Printf("[INFO] Starting chirp version %s", version)

	database, err := db.NewDatabase(cfg.Options.SaveLocation)
	if err != nil {
		logger.Logger.Fatal(err)
	}
	defer database.Close()

	cache := service.NewCacheService(repository.NewPostRepository(database.DB), cfg.Options.CacheLimit)

	client, err := api.NewClient(cfg)
	if err != nil {
		logger.Logger.Fatal(err)
	}

	controller := timeline.NewController(client, cache)
	composer := compose.NewComposer(client, cfg.Options.MaxPostLength)

	if flags.IsCLIMode() {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		runner := &cmd.CLI{
			Controller: controller,
			Composer:   composer,
			Liker:      client,
			Store:      cache,
			Cache:      cache,
			Out:        os.Stdout,
			Progress:   os.Stderr,
		}
		if err := runner.Run(ctx, flags); err != nil {
			logger.Logger.Printf("[ERROR] %v", err)
			color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
			database.Close()
			os.Exit(1)
		}
		return
	}

	model := ui.NewMainModel(ui.Deps{
		Controller: controller,
		Composer:   composer,
		Cache:      cache,
		Listener:   stream.NewListener(cfg),
		Notifier:   notifications.NewNotificationService(cfg),
	}, version)
	defer model.Cleanup()

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Logger.Printf("[ERROR] %v", err)
		database.Close()
		os.Exit(1)
	}
}
