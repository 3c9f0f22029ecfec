package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var envFile string

// NewRootCmd crea el comando raiz; sin subcomando arranca el servidor HTTP.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "notes-auth",
		Short:         "Account registration, OTP verification and login service",
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			loadEnvFile(envFile)
		},
		RunE: runServe,
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

// NewServeCmd crea el subcomando serve.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE:  runServe,
	}
}

// loadEnvFile no falla si el archivo no existe; las variables del entorno tienen prioridad.
func loadEnvFile(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil {
		log.Printf("warning: loading %s: %v", path, err)
	}
}
