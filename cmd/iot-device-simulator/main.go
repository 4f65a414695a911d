package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/optdev/iot-monsys/internal/pkg/simulator"
)

func main() {
	serviceName := "iot-device-simulator"
	serviceVersion := version()

	logger := newLogger(serviceName, serviceVersion)
	logger.Info().Msg("starting up ...")

	devices := flag.Int("devices", 5, "number of devices to generate")
	interval := flag.Duration("interval", 5*time.Second, "interval for sending data")
	udpHost := flag.String("udp-host", "localhost", "host of the sensor ingest udp listener")
	udpPort := flag.String("udp-port", "41234", "udp port for sending data")
	commandPort := flag.String("command-port", "41235", "port for receiving commands")
	anomalyRate := flag.Float64("anomaly-rate", 5, "frequency of anomalies (0-100%)")
	flag.Parse()

	logger.Info().
		Int("devices", *devices).
		Str("interval", interval.String()).
		Str("target", *udpHost+":"+*udpPort).
		Str("command_port", *commandPort).
		Float64("anomaly_rate", *anomalyRate).
		Msg("simulator configuration")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	generator := simulator.NewGenerator(*devices, *anomalyRate, logger)

	sender, err := simulator.NewSender(*udpHost, *udpPort, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create udp sender")
	}
	defer sender.Close()

	commands := simulator.NewCommandReceiver("0.0.0.0", *commandPort, generator, logger)
	if err := commands.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to start command receiver")
	}

	sendAll := func() {
		for _, reading := range generator.Generate() {
			if err := sender.Send(reading); err != nil {
				logger.Error().Err(err).Str("device_id", reading.DeviceID).Msg("failed to send reading")
			}
		}
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sendAll()

	for {
		select {
		case <-ticker.C:
			sendAll()
		case <-sigChan:
			logger.Info().Msg("simulator is stopping ...")
			commands.Stop()
			return
		}
	}
}

func newLogger(serviceName, serviceVersion string) zerolog.Logger {
	logger := log.With().Str("service", strings.ToLower(serviceName)).Str("version", serviceVersion).Logger()
	return logger
}

func version() string {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	buildSettings := buildInfo.Settings
	infoMap := map[string]string{}
	for _, s := range buildSettings {
		infoMap[s.Key] = s.Value
	}

	sha := infoMap["vcs.revision"]
	if infoMap["vcs.modified"] == "true" {
		sha += "+"
	}

	return sha
}
