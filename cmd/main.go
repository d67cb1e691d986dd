package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	transit "nycboard.dev/transit"
	"nycboard.dev/transit/config"
	"nycboard.dev/transit/feed"
	"nycboard.dev/transit/storage"
)

var rootCmd = &cobra.Command{
	Use:          "transit",
	Short:        "NYC transit arrival boards",
	Long:         "Queries realtime arrivals for curated stations",
	SilenceUsage: true,
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(routesCmd)
	rootCmd.AddCommand(stationsCmd)
}

func main() {
	// Optional; API keys can live in a .env during development.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func buildStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return storage.NewMemoryStorage(), nil
	case "sqlite":
		if cfg.Storage.Directory != "" {
			return storage.NewSQLiteStorage(storage.SQLiteConfig{
				OnDisk:    true,
				Directory: cfg.Storage.Directory,
			})
		}
		return storage.NewSQLiteStorage()
	case "postgres":
		return storage.NewPSQLStorage(cfg.Storage.ConnStr, false)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// Loads config and tables and returns the registry manager.
func buildManager(cmd *cobra.Command) (*transit.Manager, *config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	s, err := buildStorage(cfg)
	if err != nil {
		return nil, nil, err
	}

	manager := transit.NewManager(s)
	if cfg.Tables.StationsPath != "" {
		err = manager.LoadFiles(cfg.Tables.StationsPath, cfg.Tables.RoutesPath)
	} else if cfg.Tables.StationsURL != "" {
		err = manager.LoadURLs(cmd.Context(), cfg.Tables.StationsURL, cfg.Tables.RoutesURL, nil)
	} else {
		err = manager.Refresh()
	}
	if err != nil {
		return nil, nil, err
	}

	return manager, cfg, nil
}

// Wires feed sources onto the loaded registry.
func buildAggregator(cmd *cobra.Command) (*transit.Aggregator, *config.Config, error) {
	manager, cfg, err := buildManager(cmd)
	if err != nil {
		return nil, nil, err
	}

	var subwayHeaders map[string]string
	if cfg.Subway.APIKey != "" {
		subwayHeaders = map[string]string{"x-api-key": cfg.Subway.APIKey}
	}

	sources := []feed.Source{
		feed.NewSubway(feed.SubwayConfig{
			FeedURLs: cfg.Subway.FeedURLs,
			Headers:  subwayHeaders,
			Timeout:  cfg.SubwayTimeout(),
		}),
		feed.NewPATH(feed.PATHConfig{
			FeedURL: cfg.PATH.FeedURL,
			Timeout: cfg.PATHTimeout(),
		}),
	}
	if cfg.TransitAPI.BaseURL != "" {
		sources = append(sources, feed.NewTransitAPI(feed.TransitAPIConfig{
			BaseURL: cfg.TransitAPI.BaseURL,
			APIKey:  cfg.TransitAPI.APIKey,
			Timeout: cfg.TransitAPITimeout(),
		}))
	}

	return transit.NewAggregator(manager.Registry(), sources...), cfg, nil
}
