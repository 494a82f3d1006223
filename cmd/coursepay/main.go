package main

import (
	"os"

	"github.com/spf13/cobra"

	"coursepay/internal/interfaces/cli/migrate"
	"coursepay/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "coursepay",
		Short: "Coursepay - paid course enrolment bridge",
		Long:  `Coursepay verifies Paystack payment notifications and turns confirmed payments into course enrolments.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
