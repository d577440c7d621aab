package command

import (
	"fmt"
	"log/slog"

	"github.com/pixil98/go-service"
	"github.com/pixil98/go-webmud/internal/commands"
	"github.com/pixil98/go-webmud/internal/listener"
	"github.com/pixil98/go-webmud/internal/messaging"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	reg, err := cfg.Storage.BuildRegistry()
	if err != nil {
		return nil, err
	}
	slog.Info("world loaded", "rooms", reg.Len())

	natsServer, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	// Setup the action interpreter
	cmdStore, err := cfg.Storage.Commands.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating command store: %w", err)
	}
	cmdHandler := commands.NewHandler(cmdStore, reg, natsServer, cfg.Nats.subject())
	if err := cmdHandler.CompileAll(); err != nil {
		return nil, fmt.Errorf("compiling commands: %w", err)
	}

	sessions, err := cfg.Sessions.BuildStore(cmdHandler, reg)
	if err != nil {
		return nil, fmt.Errorf("creating session store: %w", err)
	}
	slog.Info("sessions ready", "mode", sessions.Mode().String(), "start_room", cfg.Sessions.StartRoom)

	metrics := listener.NewMetrics()
	cm := listener.NewConnectionManager(sessions, listener.WithMetrics(metrics))

	return service.WorkerList{
		"listener": cfg.Listener.BuildListener(cm, metrics),
		"nats":     natsServer,
		"relay":    messaging.NewRelay(natsServer, cfg.Nats.subject(), cm),
	}, nil
}
