package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/radiolinkd/internal/config"
	"codeberg.org/mutker/radiolinkd/internal/diag"
	"codeberg.org/mutker/radiolinkd/internal/errors"
	"codeberg.org/mutker/radiolinkd/internal/logger"
	"codeberg.org/mutker/radiolinkd/internal/modem"
	"codeberg.org/mutker/radiolinkd/internal/pid"
	"codeberg.org/mutker/radiolinkd/internal/radio"
	"codeberg.org/mutker/radiolinkd/internal/telemetry"
)

const simInterval = time.Second

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	cfg.ApplyLogLevel()
	logger.Debug().Msg("Config loaded")
}

func main() {
	errFactory := errors.New()

	if err := pid.Write(); err != nil {
		logger.FatalWithCode(errFactory.Wrap(errors.ErrInitApp, err)).Msg("failed to write PID file")
	}
	defer pid.Remove()

	tracker := radio.NewTracker(uint8(cfg.LowRSSI))

	feed, err := buildFeed(cfg)
	if err != nil {
		logger.FatalWithCode(errFactory.Wrap(errors.ErrInitApp, err)).Msg("failed to initialize telemetry sinks")
	}
	defer feed.Close()

	handler := modem.NewHandler(tracker, feed)

	source, err := openSource(cfg)
	if err != nil {
		logger.FatalWithCode(errFactory.Wrap(errors.ErrOpenSource, err)).Msg("failed to open telemetry source")
	}
	defer source.Close()

	updater := diag.NewUpdater(time.Duration(cfg.Interval) * time.Second)
	updater.Add(cfg.LinkName+" Radio", tracker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	go updater.Poll(ctx)

	if err := run(ctx, source, handler); err != nil {
		logger.ErrorWithCode(errFactory.Wrap(errors.ErrMainLoop, err)).Msg("error in main loop")
	}
	logger.Info().Msg("Exiting...")
}

func run(ctx context.Context, source modem.Source, handler *modem.Handler) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- source.Run(ctx)
	}()

	for ev := range source.Events() {
		if err := handler.Handle(ctx, ev); err != nil {
			logger.Warn().Err(err).Msg("Dropping undecodable frame")
		}
	}

	return <-errCh
}

func buildFeed(cfg *config.Config) (telemetry.Publisher, error) {
	feedCfg := telemetry.DefaultFeedConfig()
	feedCfg.Enabled = cfg.MQTTEnabled
	feedCfg.Broker = cfg.MQTTBroker
	if cfg.MQTTPort != 0 {
		feedCfg.Port = cfg.MQTTPort
	}
	if cfg.MQTTTopic != "" {
		feedCfg.Topic = cfg.MQTTTopic
	}

	feed, err := telemetry.NewFeed(feedCfg)
	if err != nil {
		return nil, err
	}

	recCfg := telemetry.DefaultRecorderConfig()
	recCfg.Enabled = cfg.Telemetry
	if cfg.TelemetryDB != "" {
		recCfg.DBPath = cfg.TelemetryDB
	}

	recorder, err := telemetry.NewRecorder(recCfg)
	if err != nil {
		feed.Close()
		return nil, err
	}

	return telemetry.Multi(feed, recorder), nil
}

func openSource(cfg *config.Config) (modem.Source, error) {
	if cfg.Simulate {
		logger.Info().Msg("Simulation mode activated, generating synthetic telemetry")
		return modem.NewSimSource(simInterval), nil
	}

	return modem.OpenSerial(cfg.SerialPort, cfg.BaudRate)
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
