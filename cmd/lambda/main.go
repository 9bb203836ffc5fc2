package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"moodadmin/internal/adapters/apigw"
	"moodadmin/internal/app"
	"moodadmin/internal/config"
)

func main() {
	cfg, err := config.Load(os.Getenv("MOODADMIN_CONFIG"))
	if err != nil {
		slog.Error("config_invalid", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(config.NewLogger(cfg, os.Stdout))

	// The audit log lives on the function's scratch disk.
	if cfg.Store.SQLitePath == "moodadmin.db" {
		cfg.Store.SQLitePath = "/tmp/moodadmin.db"
	}

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		slog.Error("startup_failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	lambda.Start(apigw.Handler(a.Handler))
}
