package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// .env es opcional; las env vars reales pisan igual
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "walletgate",
		Short: "Coordinador de sesión del dashboard financiero",
		Long: "walletgate corre el ciclo de vida de autenticación/sesión del dashboard\n" +
			"(signup/login, perfil, KYC, expiración) contra un identity provider y un\n" +
			"profile store configurables, y lo expone en un server HTTP de desarrollo.",
	}

	var cfgPath string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Levanta el coordinator y el server HTTP de desarrollo",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cfgPath)
		},
	}
	serve.Flags().StringVarP(&cfgPath, "config", "c", "config.yaml", "ruta del config YAML")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Imprime la versión",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("walletgate", version)
		},
	}

	root.AddCommand(serve, versionCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
