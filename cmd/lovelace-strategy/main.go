// Lovelace Strategy - mushroom dashboard generator for Home Assistant.
//
// The binary reads Home Assistant's registries (live over the websocket API
// or from a captured snapshot), generates a Lovelace dashboard and either
// writes it once to a file or stdout, or keeps serving it over HTTP and MQTT
// when the API is enabled.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/nerrad567/lovelace-strategy/internal/api"
	"github.com/nerrad567/lovelace-strategy/internal/generator"
	"github.com/nerrad567/lovelace-strategy/internal/hass"
	"github.com/nerrad567/lovelace-strategy/internal/history"
	"github.com/nerrad567/lovelace-strategy/internal/infrastructure/config"
	"github.com/nerrad567/lovelace-strategy/internal/infrastructure/database"
	"github.com/nerrad567/lovelace-strategy/internal/infrastructure/influxdb"
	"github.com/nerrad567/lovelace-strategy/internal/infrastructure/logging"
	"github.com/nerrad567/lovelace-strategy/internal/infrastructure/mqtt"
	"github.com/nerrad567/lovelace-strategy/internal/lovelace"
	"github.com/nerrad567/lovelace-strategy/internal/options"
	"github.com/nerrad567/lovelace-strategy/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	defaultConfigPath = "configs/config.yaml"

	// stdoutOutput makes one-shot mode write the dashboard to stdout.
	stdoutOutput = "-"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application, separated from main for testability.
//
// Parameters:
//   - ctx: Cancelled on shutdown signals
//   - stdout: Where one-shot mode writes the dashboard when output is "-"
//
// Returns:
//   - error: nil on a clean exit, or the first fatal failure
func run(ctx context.Context, stdout io.Writer) error {
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// stdout carries the dashboard in one-shot mode, so logs move aside.
	if !cfg.API.Enabled && cfg.Strategy.Output == stdoutOutput {
		cfg.Logging.Output = "stderr"
	}
	log := logging.New(cfg.Logging, version)
	log.Info("starting lovelace-strategy",
		"version", version,
		"commit", commit,
		"build_date", date,
		"config", configPath,
	)

	override, err := loadOverride(cfg.Strategy.OptionsFile)
	if err != nil {
		return err
	}

	source, closeSource, err := openSource(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSource()

	if path := cfg.HomeAssistant.CapturePath; path != "" {
		if err := captureSnapshot(ctx, source, path, log); err != nil {
			return err
		}
	}

	gen := generator.New(generator.Config{
		Site:     cfg.Site.ID,
		Language: cfg.Strategy.Language,
		Workers:  cfg.Strategy.Workers,
		LogLevel: cfg.Logging.Level,
		Override: override,
	}, source, log)

	checks := make(map[string]api.HealthChecker)

	if cfg.Database.Enabled {
		db, dbErr := openDatabase(ctx, cfg.Database, log)
		if dbErr != nil {
			return dbErr
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
		gen.SetHistory(history.NewSQLiteRepository(db.DB))
		checks["database"] = db
	} else {
		log.Info("generation history disabled")
	}

	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		gen.SetPublisher(mqttClient)
		checks["mqtt"] = mqttClient
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"topic_prefix", cfg.MQTT.TopicPrefix,
		)
	} else {
		log.Info("MQTT disabled")
	}

	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(ctx, cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		gen.SetMetrics(influxClient)
		checks["influxdb"] = influxClient
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	if !cfg.API.Enabled {
		return generateOnce(ctx, gen, cfg.Strategy, stdout)
	}
	return serve(ctx, cfg, gen, mqttClient, checks, log)
}

// generateOnce runs one generation and writes the dashboard.
func generateOnce(ctx context.Context, gen *generator.Service, cfg config.StrategyConfig, stdout io.Writer) error {
	result, err := gen.Generate(ctx, history.SourceCLI)
	if err != nil {
		return err
	}

	out := stdout
	if cfg.Output != stdoutOutput {
		if err := os.MkdirAll(filepath.Dir(cfg.Output), 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		f, err := os.Create(cfg.Output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := writeDashboard(out, result.Dashboard, cfg.Format); err != nil {
		return fmt.Errorf("writing dashboard: %w", err)
	}
	return nil
}

// serve generates once at startup, then answers API requests and MQTT
// generate commands until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, gen *generator.Service, mqttClient *mqtt.Client, checks map[string]api.HealthChecker, log *logging.Logger) error {
	server, err := api.New(api.Deps{
		Config:    cfg.API,
		Logger:    log,
		Generator: gen,
		Version:   version,
		Checks:    checks,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	if mqttClient != nil {
		topic := mqttClient.Topics().GenerateCommand()
		if err := mqttClient.Subscribe(topic, gen.GenerateCommandHandler(ctx)); err != nil {
			return fmt.Errorf("subscribing to %s: %w", topic, err)
		}
		log.Info("listening for generate commands", "topic", topic)
	}

	// A failed first run leaves the API answering 503 until the next one.
	if _, err := gen.Generate(ctx, history.SourceCLI); err != nil {
		log.Warn("initial generation failed", "error", err)
	}

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")
	return nil
}

// captureSnapshot saves the registries of src to path so later runs can use
// it as homeassistant.snapshot_path.
func captureSnapshot(ctx context.Context, src hass.Source, path string, log *logging.Logger) error {
	snap, err := hass.Capture(ctx, src)
	if err != nil {
		return fmt.Errorf("capturing registry snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}
	if err := snap.Save(path); err != nil {
		return err
	}
	log.Info("registry snapshot captured",
		"path", path,
		"entities", len(snap.EntityList),
		"devices", len(snap.DeviceList),
		"areas", len(snap.AreaList),
	)
	return nil
}

// openSource returns the snapshot when one is configured and a live
// Home Assistant connection otherwise. The returned func releases it.
func openSource(ctx context.Context, cfg *config.Config, log *logging.Logger) (hass.Source, func(), error) {
	if path := cfg.HomeAssistant.SnapshotPath; path != "" {
		snap, err := hass.LoadSnapshot(path)
		if err != nil {
			return nil, nil, fmt.Errorf("loading snapshot: %w", err)
		}
		log.Info("using registry snapshot",
			"path", path,
			"entities", len(snap.EntityList),
			"areas", len(snap.AreaList),
		)
		return snap, func() {}, nil
	}

	client, err := hass.Dial(ctx, hass.ClientConfig{
		URL:     cfg.HomeAssistant.URL,
		Token:   cfg.HomeAssistant.Token,
		Timeout: cfg.GetHomeAssistantTimeout(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to Home Assistant: %w", err)
	}
	client.SetLogger(log)
	log.Info("Home Assistant connected", "url", cfg.HomeAssistant.URL, "ha_version", client.Version())

	return client, func() {
		log.Info("disconnecting from Home Assistant")
		if err := client.Close(); err != nil {
			log.Error("error closing Home Assistant connection", "error", err)
		}
	}, nil
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig, log *logging.Logger) (*database.DB, error) {
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(ctx, migrations.FS); err != nil {
		db.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database ready", "path", cfg.Path)
	return db, nil
}

func loadOverride(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	override, err := options.LoadOverride(path)
	if err != nil {
		return nil, fmt.Errorf("loading strategy options: %w", err)
	}
	return override, nil
}

func writeDashboard(w io.Writer, d lovelace.Dashboard, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return err
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// getConfigPath returns LOVELACE_CONFIG, or the default path.
func getConfigPath() string {
	if path := os.Getenv("LOVELACE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
