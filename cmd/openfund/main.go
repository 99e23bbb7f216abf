package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// .env es opcional, solo para desarrollo local.
	_ = godotenv.Load(".env")

	var configPath string

	root := &cobra.Command{
		Use:   "openfund",
		Short: "OpenFund auth service",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "Path al config YAML")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newMigrateCmd(&configPath))
	root.AddCommand(newKeygenCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
