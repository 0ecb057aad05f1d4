// sensord polls the platform sensors, keeps their cache, serves the PDR
// repository and exports telemetry to the host management controller.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/entities"
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/logging"
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/utils"
)

const defaultConfigPath = "configs/platform.yaml"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath, logLevel string
	var noTelemetry bool

	flagSet := pflag.NewFlagSet("sensord", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", defaultConfigPath, "platform configuration file")
	flagSet.StringVar(&logLevel, "log-level", "", "log level (overrides BIC_LOG_LEVEL and the configuration)")
	flagSet.BoolVar(&noTelemetry, "no-telemetry", false, "do not export telemetry even if the configuration enables it")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	conf, err := utils.ConfigurationParser(configPath, entities.PlatformConfig{})
	if err != nil {
		return err
	}
	applyEnvironment(&conf)
	if logLevel != "" {
		conf.LogLevel = logLevel
	}
	if noTelemetry {
		conf.Telemetry.Enabled = false
	}

	logs := logging.NewLogrus(conf.LogLevel, os.Stdout)
	log := logs.Get("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := build(ctx, conf, logs)
	if err != nil {
		return err
	}
	defer d.close()

	var wg sync.WaitGroup
	for name, task := range d.tasks() {
		wg.Add(1)
		go func(name string, task func(context.Context) error) {
			defer wg.Done()
			if err := task(ctx); err != nil && ctx.Err() == nil {
				log.WithError(err).Errorf("%s stopped", name)
			}
		}(name, task)
	}
	log.Infof("sensord started with %d sensors", len(d.engine.Descriptors()))

	<-ctx.Done()
	wg.Wait()
	log.Info("sensord stopped")
	return nil
}

// applyEnvironment lets the environment override the configured log level
// and broker URL.
func applyEnvironment(conf *entities.PlatformConfig) {
	conf.LogLevel = utils.GetValueFromEnvironmentVariable("BIC_LOG_LEVEL", conf.LogLevel)
	conf.Telemetry.URL = utils.GetValueFromEnvironmentVariable("BIC_AMQP_URL", conf.Telemetry.URL)
}
