package main

import (
	"context"

	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/driver"
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/entities"
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/gateways/telemetry"
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/gateways/telemetry/network"
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/logging"
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/pdr"
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/pldm"
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/sdr"
	"github.com/janael-pinheiro/bic-telemetry-golang/pkg/sensor"
	"github.com/pkg/errors"
)

// daemon holds the running components.
type daemon struct {
	power     *sensor.PowerState
	engine    *sensor.Engine
	scheduler *sensor.Scheduler
	sdr       *sdr.Table
	pdr       *pdr.Repository
	pldm      *pldm.Service
	telemetry *telemetry.Integration
	broker    network.Messaging
}

func build(ctx context.Context, conf entities.PlatformConfig, logs *logging.Logrus) (*daemon, error) {
	d := &daemon{power: sensor.NewPowerState(conf.Power)}
	registry := driver.Builtin()

	d.engine = sensor.NewEngine(registry, conf.Capacity, logs.Get("sensor"))
	for _, cfg := range conf.Sensors {
		descriptor, err := sensor.DescriptorFromConfig(cfg, d.power)
		if err != nil {
			return nil, err
		}
		if err := d.engine.AddSensor(ctx, descriptor); err != nil {
			return nil, errors.Wrapf(err, "add sensor 0x%02x", cfg.ID)
		}
	}
	d.engine.Init(ctx)

	opts := []sensor.SchedulerOption{
		sensor.WithInterval(conf.Scheduler.Interval),
		sensor.WithStartDelay(conf.Scheduler.StartDelay),
	}
	if len(conf.SDR) > 0 {
		d.sdr = sdr.NewTable(conf.SDR, logs.Get("sdr"))
		opts = append(opts, sensor.WithRecordCheck(d.sdr.Has))
	}
	groups, err := sensor.GroupsFromConfig(conf.MonitorGroups, d.power)
	if err != nil {
		return nil, err
	}
	d.scheduler = sensor.NewScheduler(d.engine, groups, logs.Get("scheduler"), opts...)

	d.pdr = pdr.Build(pdr.NewConfigLoader(conf), logs.Get("pdr"))
	d.pldm, err = pldm.NewService(conf.PldmThreads, registry, d.power, logs.Get("pldm"),
		pldm.WithInterval(conf.Scheduler.PldmInterval))
	if err != nil {
		return nil, err
	}

	if conf.Telemetry.Enabled {
		if err := d.startTelemetry(conf.Telemetry, logs); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *daemon) startTelemetry(conf entities.TelemetryConfig, logs *logging.Logrus) error {
	codec, err := network.NewCodec(conf.Encoding)
	if err != nil {
		return err
	}
	log := logs.Get("telemetry")
	broker := network.NewAMQPHandler(network.NewAmqpConnection(conf.URL), codec, log)
	if err := broker.Start(); err != nil {
		return err
	}
	log.Info("broker connected")
	d.broker = broker

	d.telemetry, err = telemetry.NewIntegration(d.engine,
		network.NewMsgPublisher(broker, conf.Token, conf.Exchange),
		network.NewMsgSubscriber(broker),
		log,
		telemetry.WithInterval(conf.Interval),
		telemetry.WithPldm(d.pldm),
		telemetry.WithThresholds(d.pdr),
	)
	return err
}

func (d *daemon) tasks() map[string]func(context.Context) error {
	tasks := map[string]func(context.Context) error{
		"scheduler": d.scheduler.Run,
		"pldm":      d.pldm.Run,
	}
	if d.telemetry != nil {
		tasks["telemetry"] = d.telemetry.Run
	}
	return tasks
}

func (d *daemon) close() {
	if d.broker != nil {
		d.broker.Stop()
	}
}
