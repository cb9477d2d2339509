package main

import (
	"context"
	"os"

	"wallet/internal/account"
	"wallet/internal/alerts"
	"wallet/internal/cli"
	applog "wallet/internal/log"
	"wallet/internal/services"
	"wallet/internal/session"
)

func main() {
	// Load .env file for local development (ignore errors in production)
	cli.LoadEnvFile()

	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, applog.ComponentCLI)

	be := cli.InitBackend(context.Background(), logger.WithComponent(applog.ComponentBackend), cfg)

	engine := alerts.NewEngine(cfg.Thresholds, alerts.WithNotifier(cli.NewAlertPrinter(os.Stdout)))
	opts := account.Options{Engine: engine, Logger: logger.WithComponent(applog.ComponentRewrite)}
	sess := session.New(be.Store, opts, logger.WithComponent(applog.ComponentSession))

	var svcOpts []services.Option
	if be.Publisher != nil {
		svcOpts = append(svcOpts, services.WithPublisher(be.Publisher))
	}
	svc := services.NewWalletService(sess, logger.WithComponent(applog.ComponentService), svcOpts...)

	shell := cli.NewShell(svc, os.Stdin, os.Stdout, cli.ShellConfig{
		ExportDir: cfg.ExportDir,
		BackupDir: cfg.BackupDir,
		Prompt:    "wallet>",
	}, logger.WithComponent(applog.ComponentCLI))

	// On a signal the shell is blocked reading stdin; save from here instead.
	ctx, done := cli.GracefulShutdown(logger.Logger, cfg.ShutdownTimeout, func() {
		if err := svc.Logout(context.Background()); err != nil {
			logger.Debug("No session saved on shutdown", "error", err)
		}
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	})

	finished := make(chan error, 1)
	go func() { finished <- shell.Run(ctx) }()

	select {
	case err := <-finished:
		if cerr := be.Cleanup(); cerr != nil {
			logger.Error("Backend cleanup failed", "error", cerr)
		}
		if err != nil {
			logger.Error("Shell stopped", "error", err)
			os.Exit(1)
		}
	case <-done:
		os.Exit(130)
	}
}
