package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"

	"github.com/optdev/iot-monsys/internal/pkg/application/devicemanagement"
	"github.com/optdev/iot-monsys/internal/pkg/application/discovery"
	"github.com/optdev/iot-monsys/internal/pkg/application/forwarder"
	"github.com/optdev/iot-monsys/internal/pkg/application/ingest"
	"github.com/optdev/iot-monsys/internal/pkg/application/watchdog"
	"github.com/optdev/iot-monsys/internal/pkg/infrastructure/router"
	"github.com/optdev/iot-monsys/internal/pkg/infrastructure/storage"
	"github.com/optdev/iot-monsys/internal/pkg/infrastructure/udp"
	"github.com/optdev/iot-monsys/internal/pkg/presentation/api"
)

const serviceName string = "iot-sensor-ingest"

type flagType int
type flagMap map[flagType]string

const (
	listenAddress flagType = iota
	servicePort
	udpHost
	udpPort

	policiesFile
	devicesFile
	forwarderFile

	dbHost
	dbUser
	dbPassword
	dbPort
	dbName
	dbSSLMode

	discoveryEnabled
	discoveryDuration

	strictValidation

	watchdogInterval
	watchdogMaxSilence
)

func defaultFlags() flagMap {
	return flagMap{
		listenAddress: "0.0.0.0",
		servicePort:   "8080",
		udpHost:       "0.0.0.0",
		udpPort:       "41234",

		policiesFile:  "/opt/iotmonsys/config/authz.rego",
		devicesFile:   "/opt/iotmonsys/config/devices.csv",
		forwarderFile: "",

		dbHost:     "",
		dbUser:     "",
		dbPassword: "",
		dbPort:     "5432",
		dbName:     "iotmonsys",
		dbSSLMode:  "disable",

		discoveryEnabled:  "false",
		discoveryDuration: "60000",

		strictValidation: "false",

		watchdogInterval:   "600",
		watchdogMaxSilence: "3600",
	}
}

func main() {
	ctx, flags := parseExternalConfig(context.Background(), defaultFlags())

	serviceVersion := buildinfo.SourceVersion()
	ctx, logger, cleanup := o11y.Init(ctx, serviceName, serviceVersion, "json")
	defer cleanup()

	policies, err := os.Open(flags[policiesFile])
	exitIf(err, logger, "unable to open opa policy file")
	defer policies.Close()

	s, err := storage.New(ctx, storage.NewConfig(
		flags[dbHost], flags[dbUser], flags[dbPassword], flags[dbPort], flags[dbName], flags[dbSSLMode],
	))
	exitIf(err, logger, "could not connect to database")

	err = s.Initialize(ctx)
	exitIf(err, logger, "could not initialize database")

	if devices, err := os.Open(flags[devicesFile]); err == nil {
		err = storage.SeedDevices(ctx, s, devices)
		exitIf(err, logger, "could not seed devices")
	} else {
		logger.Info("no devices file found, skipping seeding", "file", flags[devicesFile])
	}

	messenger, err := messaging.Initialize(ctx, messaging.LoadConfiguration(ctx, serviceName, logger))
	exitIf(err, logger, "failed to init messenger")
	messenger.Start()

	dm := devicemanagement.New(devicemanagement.NewDeviceRepository(s), messenger)
	readings := ingest.NewReadingStore(s)

	disc := discovery.New()
	if flags[discoveryEnabled] == "true" {
		millis, _ := strconv.Atoi(flags[discoveryDuration])
		disc.Set(ctx, true, time.Duration(millis)*time.Millisecond)
	}

	fwd := forwarder.New(loadForwarderConfig(ctx, flags, logger))

	ingestSvc := ingest.New(readings, dm, disc, fwd, flags[strictValidation] == "true")

	listener := udp.New(flags[udpHost], flags[udpPort], func(ctx context.Context, payload []byte, sender net.Addr) {
		if err := ingestSvc.Ingest(ctx, payload); err != nil {
			log := logging.GetFromContext(ctx)
			if errors.Is(err, ingest.ErrInvalidPayload) || errors.Is(err, ingest.ErrUnknownDevice) || errors.Is(err, ingest.ErrDeviceBroken) {
				log.Warn("dropped datagram", "sender", sender.String(), "err", err.Error())
			} else {
				log.Error("failed to process datagram", "sender", sender.String(), "err", err.Error())
			}
		}
	})

	err = listener.Start(ctx)
	exitIf(err, logger, "failed to start udp listener")

	wd := watchdog.New(dm, messenger, secondsOrDefault(flags[watchdogInterval], watchdog.DefaultInterval), secondsOrDefault(flags[watchdogMaxSilence], watchdog.DefaultMaxSilence))
	wd.Start(ctx)

	r := router.New(serviceName)
	_, err = api.RegisterHandlers(ctx, r, policies, dm, readings, disc)
	exitIf(err, logger, "failed to register api handlers")

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", flags[listenAddress], flags[servicePort]),
		Handler: r,
	}

	go func() {
		logger.Info("starting http server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			exitIf(err, logger, "http server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")

	listener.Stop()
	wd.Stop(ctx)
	messenger.Close()
	s.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", "err", err.Error())
	}
}

func loadForwarderConfig(ctx context.Context, flags flagMap, logger *slog.Logger) *forwarder.Config {
	if flags[forwarderFile] != "" {
		f, err := os.Open(flags[forwarderFile])
		exitIf(err, logger, "could not open forwarder configuration file")
		defer f.Close()

		cfg, err := forwarder.LoadConfiguration(f)
		exitIf(err, logger, "could not parse forwarder configuration file")
		return cfg
	}

	envOrDef := env.GetVariableOrDefault

	cfg := &forwarder.Config{
		Enabled:    envOrDef(ctx, "STREAM_FORWARDING_ENABLED", "false") == "true",
		StreamName: envOrDef(ctx, "STREAM_NAME", "iot-data-stream"),
	}

	if endpoint := envOrDef(ctx, "STREAM_ENDPOINT", ""); endpoint != "" {
		cfg.Endpoints = []string{endpoint}
	}

	return cfg
}

func secondsOrDefault(value string, def time.Duration) time.Duration {
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return def
}

func parseExternalConfig(ctx context.Context, flags flagMap) (context.Context, flagMap) {
	// Allow environment variables to override certain defaults
	envOrDef := env.GetVariableOrDefault

	flags[listenAddress] = envOrDef(ctx, "LISTEN_ADDRESS", flags[listenAddress])
	flags[servicePort] = envOrDef(ctx, "SERVICE_PORT", flags[servicePort])
	flags[udpHost] = envOrDef(ctx, "UDP_HOST", flags[udpHost])
	flags[udpPort] = envOrDef(ctx, "UDP_PORT", flags[udpPort])

	flags[policiesFile] = envOrDef(ctx, "POLICIES_FILE", flags[policiesFile])

	flags[dbHost] = envOrDef(ctx, "POSTGRES_HOST", flags[dbHost])
	flags[dbPort] = envOrDef(ctx, "POSTGRES_PORT", flags[dbPort])
	flags[dbName] = envOrDef(ctx, "POSTGRES_DBNAME", flags[dbName])
	flags[dbUser] = envOrDef(ctx, "POSTGRES_USER", flags[dbUser])
	flags[dbPassword] = envOrDef(ctx, "POSTGRES_PASSWORD", flags[dbPassword])
	flags[dbSSLMode] = envOrDef(ctx, "POSTGRES_SSLMODE", flags[dbSSLMode])

	flags[discoveryEnabled] = envOrDef(ctx, "DISCOVERY_MODE_ENABLED", flags[discoveryEnabled])
	flags[discoveryDuration] = envOrDef(ctx, "DISCOVERY_MODE_DURATION", flags[discoveryDuration])

	flags[strictValidation] = envOrDef(ctx, "STRICT_TYPE_VALIDATION", flags[strictValidation])

	flags[watchdogInterval] = envOrDef(ctx, "WATCHDOG_INTERVAL", flags[watchdogInterval])
	flags[watchdogMaxSilence] = envOrDef(ctx, "WATCHDOG_MAX_SILENCE", flags[watchdogMaxSilence])

	apply := func(f flagType) func(string) error {
		return func(value string) error {
			flags[f] = value
			return nil
		}
	}

	// Allow command line arguments to override defaults and environment variables
	flag.Func("policies", "an authorization policy file", apply(policiesFile))
	flag.Func("devices", "list of known devices", apply(devicesFile))
	flag.Func("forwarder-config", "stream forwarder configuration file", apply(forwarderFile))
	flag.Parse()

	return ctx, flags
}

func exitIf(err error, logger *slog.Logger, msg string, args ...any) {
	if err != nil {
		logger.With(args...).Error(msg, "err", err.Error())
		time.Sleep(2 * time.Second)
		os.Exit(1)
	}
}
