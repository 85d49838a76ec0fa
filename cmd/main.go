package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deckcounter/config"
	"deckcounter/logger"
	"deckcounter/mqtt"
	"deckcounter/streamdeck"
	"deckcounter/version"
)

const (
	DEFAULT_CONFIG_FILE = "config.yaml"
)

type App struct {
	config     *config.Config
	client     *streamdeck.Client
	mqttClient mqtt.MQTTClient
	mirror     *mqtt.Mirror
	logger     logger.Logger
}

func NewApp(configFile string, params config.StartupParams) (*App, error) {
	cfg, err := config.LoadOrDefault(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logger.New(&cfg.Logging, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	app := &App{
		config: cfg,
		logger: logger,
	}

	if cfg.MQTT.Enabled {
		app.mqttClient = mqtt.NewPahoClient(
			cfg.MQTT.GetMQTTBrokerURL(),
			cfg.MQTT.ClientID,
			cfg.MQTT.Username,
			cfg.MQTT.Password,
			logger,
		)
		app.mirror = mqtt.NewMirror(app.mqttClient, &cfg.MQTT, logger)
	}

	client, err := streamdeck.NewClient(&cfg.Plugin, params, logger, app)
	if err != nil {
		return nil, fmt.Errorf("invalid startup parameters: %w", err)
	}
	app.client = client

	if app.mirror != nil {
		client.SetObserver(app.mirror)
	}

	return app, nil
}

func (a *App) OnStateChanged(state string) {
	a.logger.Debug("Host connection state changed: %s", state)

	if a.mirror != nil {
		a.mirror.PublishState(state)
	}
}

func (a *App) OnException(err error) {
	a.logger.Error("Host connection exception: %v", err)
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("Starting deckcounter %s", version.Version)

	if a.mqttClient != nil {
		if err := a.mqttClient.Connect(); err != nil {
			a.logger.Warn("MQTT mirror disabled: %v", err)
		} else {
			defer func() {
				if err := a.mqttClient.Disconnect(); err != nil {
					a.logger.Error("Failed to disconnect from MQTT broker: %v", err)
				}
			}()
		}
	}

	if err := a.client.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to host: %w", err)
	}
	defer func() {
		if err := a.client.Disconnect(); err != nil {
			a.logger.Error("Failed to disconnect from host: %v", err)
		}
	}()

	err := a.client.Run(ctx)
	a.logger.Info("Session ended with %d tracked contexts", a.client.Counters().Len())
	return err
}

func main() {
	var params config.StartupParams
	flag.StringVar(&params.Port, "port", "", "WebSocket port of the host application")
	flag.StringVar(&params.PluginUUID, "pluginUUID", "", "Unique identifier assigned to this plugin by the host")
	flag.StringVar(&params.RegisterEvent, "registerEvent", "", "Event name to use when registering with the host")
	flag.StringVar(&params.Info, "info", "", "Host and device information as JSON")
	configFile := flag.String("config", DEFAULT_CONFIG_FILE, "Configuration file path")
	generateConfig := flag.Bool("generate-config", false, "Generate a default configuration file and exit")
	showVersion := flag.Bool("version", false, "Show version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("deckcounter version %s\n", version.Version)
		fmt.Printf("Git Commit: %s\n", version.GitCommit)
		fmt.Printf("Git URL: %s\n", version.GitURL)
		fmt.Printf("Build Date: %s\n", version.BuildDate)
		return
	}

	if *generateConfig {
		err := config.GenerateDefaultConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to generate config: %v", err)
		}
		fmt.Printf("Default configuration generated at %s\n", *configFile)
		return
	}

	app, err := NewApp(*configFile, params)
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sigCount := 0
		for {
			<-sigChan
			sigCount++
			if sigCount == 1 {
				log.Println("Received shutdown signal")
				cancel()

				go func() {
					time.Sleep(5 * time.Second)
					log.Println("Force shutdown after 5 seconds")
					os.Exit(1)
				}()
			} else {
				log.Println("Force quit requested")
				os.Exit(1)
			}
		}
	}()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("Application error: %v", err)
	}

	log.Println("Application shutdown complete")
}
