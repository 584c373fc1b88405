package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pancudaniel7/kafka-output-binding/internal/core/entity"
	"github.com/pancudaniel7/kafka-output-binding/internal/core/usecase"
	"github.com/pancudaniel7/kafka-output-binding/internal/infra"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/applog"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/metrics"
)

var logger *applog.DefaultLogger

func main() {
	configPath := pflag.StringP("config", "c", "", "path to the YAML config (defaults to configs/binding.yml)")
	pflag.String("log-level", "", "overrides log.level")
	pflag.Parse()
	_ = viper.BindPFlag("log.level", pflag.Lookup("log-level"))

	if err := infra.InitConfig(*configPath); err != nil {
		applog.NewAppLogger(os.Stderr, "error").Fatal("Failed to load config", "err", err)
	}
	logger = applog.NewAppDefaultLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v := validator.New()
	wg := &sync.WaitGroup{}

	binding, err := infra.InitOutputBinding(entity.NewTypeRegistry())
	if err != nil {
		logger.Fatal("Invalid output binding", "err", err)
	}
	component := func(name string) applog.AppLogger {
		return logger.With("component", name, "topic", binding.Topic)
	}

	codecOpts, err := infra.InitSchemaRegistry(component(metrics.ComponentRegistry), binding, v)
	if err != nil {
		logger.Fatal("Failed to init schema registry", "err", err)
	}
	provisioner, err := infra.InitProvisioner(component(metrics.ComponentProvisioner), v)
	if err != nil {
		logger.Fatal("Failed to init topic provisioner", "err", err)
	}
	publisher, err := infra.InitPublisher(component(metrics.ComponentKafka), binding, v, codecOpts...)
	if err != nil {
		logger.Fatal("Failed to init publisher", "err", err)
	}
	defer publisher.Close()

	src, decoder, err := infra.InitLineSource(component("source"), os.Stdin, binding, v)
	if err != nil {
		logger.Fatal("Failed to init input source", "err", err)
	}

	var server *fiber.App
	if viper.GetBool("http.enabled") {
		server = fiber.New()
		infra.InitRoutes(server, binding)
		infra.InitMetrics(server)
		addr := viper.GetString("http.addr")
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := server.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
				logger.Error("HTTP server stopped", "err", err)
			}
		}()
	}
	stopPprof := infra.StartPprof(logger, wg)

	svc := usecase.NewOutputService(component(metrics.ComponentBinding), binding, provisioner, publisher, decoder)
	if err := svc.Bind(ctx); err != nil {
		logger.Fatal("Failed to bind output", "topic", binding.Topic, "err", err)
	}
	src.SetHandler(svc.HandleLine)

	runErr := src.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Error("Input processing stopped", "err", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if server != nil {
		_ = server.ShutdownWithContext(shutdownCtx)
	}
	_ = stopPprof(shutdownCtx)
	wg.Wait()

	logger.Info("Shutdown complete")
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		os.Exit(1)
	}
}
