// Lumen Core - LED output routing engine
//
// This is the main entry point for the Lumen Core application. Lumen
// sits between interactive music modules and the venue's LED hardware:
// modules declare what they can draw, devices declare what they can
// show, and Lumen decides what goes where, blends overlays, and paces
// delivery per device.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lumensuite/lumen-core/internal/api"
	"github.com/lumensuite/lumen-core/internal/capability"
	"github.com/lumensuite/lumen-core/internal/compositor"
	"github.com/lumensuite/lumen-core/internal/delivery"
	"github.com/lumensuite/lumen-core/internal/device"
	"github.com/lumensuite/lumen-core/internal/infrastructure/config"
	"github.com/lumensuite/lumen-core/internal/infrastructure/logging"
	"github.com/lumensuite/lumen-core/internal/infrastructure/status"
	"github.com/lumensuite/lumen-core/internal/infrastructure/telemetry"
	"github.com/lumensuite/lumen-core/internal/routing"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Lumen Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Device directory, seeded from config
	directory := device.NewDirectory()
	directory.SetLogger(log.With("component", "directory"))
	for i := range cfg.Devices {
		if err := directory.Upsert(&cfg.Devices[i]); err != nil {
			return fmt.Errorf("seeding device %q: %w", cfg.Devices[i].ID, err)
		}
	}
	log.Info("device directory initialised", "devices", directory.Count())

	// Capability registry; modules register over the API at runtime
	modules := capability.NewRegistry()
	modules.SetLogger(log.With("component", "capability"))

	// Routing matrix with the built-in rule set
	matrix := routing.NewMatrix(routing.NewEngine())
	matrix.SetLogger(log.With("component", "routing"))

	// Telemetry sink (optional)
	var recorder *telemetry.Client
	if cfg.InfluxDB.Enabled {
		recorder, err = telemetry.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := recorder.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		recorder.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Delivery transports and sender
	bridge := delivery.NewBridgeTransport(cfg.Delivery.Bridge.URL, cfg.GetBridgeWriteTimeout())
	defer func() {
		if closeErr := bridge.Close(); closeErr != nil {
			log.Error("error closing bridge connection", "error", closeErr)
		}
	}()

	senderOpts := delivery.SenderOptions{
		HTTP:              delivery.NewHTTPTransport(cfg.GetHTTPTimeout()),
		Bridge:            bridge,
		Health:            directory,
		DegradedThreshold: cfg.Delivery.DegradedThreshold,
	}
	if recorder != nil {
		senderOpts.Recorder = recorder
	}
	sender := delivery.NewSender(senderOpts)
	sender.SetLogger(log.With("component", "delivery"))

	// Compositor
	compDeps := compositor.Deps{
		Directory: directory,
		Modules:   modules,
		Matrix:    matrix,
		Sender:    sender,
		Logger:    log.With("component", "compositor"),
		Config: compositor.CompositorConfig{
			MaxUpdatesPerSecond: cfg.Compositor.MaxUpdatesPerSecond,
		},
	}
	if recorder != nil {
		compDeps.Recorder = recorder
	}
	comp, err := compositor.New(compDeps)
	if err != nil {
		return fmt.Errorf("creating compositor: %w", err)
	}
	comp.Start(ctx)
	defer comp.Stop()

	// MQTT status publisher (optional)
	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := status.Connect(cfg.MQTT)
		if mqttErr != nil && !errors.Is(mqttErr, status.ErrDisabled) {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
		}
		if mqttClient != nil {
			defer func() {
				log.Info("disconnecting from MQTT")
				if closeErr := mqttClient.Close(); closeErr != nil {
					log.Error("error closing MQTT", "error", closeErr)
				}
			}()
			mqttClient.SetLogger(log.With("component", "mqtt"))
			log.Info("MQTT connected",
				"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
				"client_id", cfg.MQTT.Broker.ClientID,
			)

			publisher := status.NewPublisher(status.PublisherDeps{
				Client:    mqttClient,
				Source:    comp,
				Selector:  comp,
				Logger:    log.With("component", "status"),
				ServiceID: cfg.Service.ID,
				Prefix:    cfg.MQTT.TopicPrefix,
				QoS:       byte(cfg.MQTT.QoS),
				Interval:  cfg.GetStatusInterval(),
			})
			if startErr := publisher.Start(); startErr != nil {
				log.Warn("status publisher failed to start", "error", startErr)
			} else {
				defer publisher.Close()
			}
		}
	} else {
		log.Info("MQTT disabled")
	}

	// Debug/admin API (optional)
	if cfg.API.Enabled {
		server, apiErr := api.New(api.Deps{
			Config:     cfg.API,
			Logger:     log.With("component", "api"),
			Directory:  directory,
			Modules:    modules,
			Compositor: comp,
			Version:    version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := server.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := server.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	} else {
		log.Info("API disabled")
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("Lumen Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses LUMEN_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("LUMEN_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
