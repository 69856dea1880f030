package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Joseda-hg/lazystreak/internal/app"
	"github.com/Joseda-hg/lazystreak/internal/config"
	"github.com/Joseda-hg/lazystreak/internal/db"
	"github.com/Joseda-hg/lazystreak/internal/tui"
	"github.com/Joseda-hg/lazystreak/internal/web"
)

var Version = "dev"

type rootFlags struct {
	configPath string
	backend    string
	dbPath     string
	web        bool
	port       int
}

func main() {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "lazystreak",
		Short:         "Track daily tasks and the streaks they build",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), flags)
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file path (.json or .yaml)")
	rootCmd.PersistentFlags().StringVar(&flags.backend, "backend", "", "task store: sqlite, memory, csv, json or mongo")
	rootCmd.PersistentFlags().StringVar(&flags.dbPath, "db", "", "sqlite db path")
	rootCmd.PersistentFlags().BoolVar(&flags.web, "web", false, "enable web server")
	rootCmd.PersistentFlags().IntVar(&flags.port, "port", 0, "web server port")

	rootCmd.AddCommand(serveCmd(flags))
	rootCmd.AddCommand(statsCmd(flags))
	rootCmd.AddCommand(addCmd(flags))
	rootCmd.AddCommand(listCmd(flags))
	rootCmd.AddCommand(doneCmd(flags))
	rootCmd.AddCommand(rmCmd(flags))

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runTUI(ctx context.Context, flags *rootFlags) error {
	cfg, session, backend, err := openSession(ctx, flags)
	if err != nil {
		return err
	}
	defer backend.Close()

	if cfg.WebEnabled {
		addr := fmt.Sprintf(":%d", cfg.WebPort)
		server := web.NewServer(session)
		go func() {
			log.Printf("Web server running at http://localhost%s", addr)
			if err := server.Run(addr); err != nil {
				log.Printf("web server error: %v", err)
			}
		}()
	}

	return tui.Run(session)
}

// openSession loads the config, applies flag overrides, saves the merged
// result back and opens the configured backend.
func openSession(ctx context.Context, flags *rootFlags) (config.Config, *app.Session, *db.Backend, error) {
	cfgPath, err := resolveConfigPath(flags.configPath)
	if err != nil {
		return config.Config{}, nil, nil, err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, nil, nil, err
	}

	if flags.backend != "" {
		cfg.Backend = flags.backend
	}
	if flags.dbPath != "" {
		cfg.DBPath = flags.dbPath
	}
	if flags.web {
		cfg.WebEnabled = true
	}
	if flags.port != 0 {
		cfg.WebPort = flags.port
	}
	cfg.FillPaths(filepath.Dir(cfgPath))

	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("config %s: %w", cfgPath, err)
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return config.Config{}, nil, nil, err
	}

	opts, err := cfg.DBOptions()
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	agg, err := cfg.Aggregator()
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	source, err := app.ParseSource(cfg.ActivitySource)
	if err != nil {
		return config.Config{}, nil, nil, err
	}

	backend, err := db.OpenBackend(ctx, opts)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	session, err := app.NewSession(backend, agg, source)
	if err != nil {
		_ = backend.Close()
		return config.Config{}, nil, nil, err
	}
	return cfg, session, backend, nil
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return config.DefaultConfigPath()
}
