package main

import (
	"os"

	"github.com/spf13/cobra"

	"relief-grid-go/internal/app"
	"relief-grid-go/internal/config"
	"relief-grid-go/internal/domain/access"
	"relief-grid-go/pkg/logger"
)

// operatorID attributes rows written from the command line.
const operatorID = "00000000-0000-0000-0000-00000000c11a"

var log = logger.NewFromEnv(os.Stderr)

var rootCmd = &cobra.Command{
	Use:           "relief-grid",
	Short:         "Coordinate volunteers and supplies across disaster relief grids",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, importCmd, exportCmd, fixBoundsCmd, tokenCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Critical("cli: command failed", "err", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	return config.Load(log)
}

func openApp() (*app.App, config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, config.Config{}, err
	}
	application, err := app.New(cfg, log)
	if err != nil {
		return nil, config.Config{}, err
	}
	return application, cfg, nil
}

func closeApp(application *app.App) {
	if err := application.Close(); err != nil {
		log.Error("app: close failed", "err", err)
	}
}

func operator() access.Actor {
	return access.Actor{ID: operatorID, Role: access.RoleAdmin}
}
