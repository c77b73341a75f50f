package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"taskvault/internal/client"
	"taskvault/internal/config"
)

var (
	cfg config.Config

	flagAPI   string
	flagToken string
	flagEnv   string
)

var rootCmd = &cobra.Command{
	Use:           "taskvault",
	Short:         "Boards, sequenced todos and project analytics",
	Long:          `TaskVault serves the boards, todos, projects and settings API and talks to a running server from the command line.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(flagEnv)
		if err != nil {
			return err
		}
		cfg = loaded
		if flagAPI != "" {
			cfg.APIURL = flagAPI
		}
		return nil
	},
}

func apiClient() *client.Client {
	var opts []client.Option
	if flagToken != "" {
		opts = append(opts, client.WithToken(flagToken))
	}
	return client.New(cfg.APIURL, opts...)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEnv, "env-file", ".env", "Optional dotenv file")
	rootCmd.PersistentFlags().StringVar(&flagAPI, "api", "", "API base URL (default $TASKVAULT_API_URL)")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", os.Getenv("TASKVAULT_TOKEN"), "Bearer token for servers with identity binding")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(boardsCmd)
	rootCmd.AddCommand(todosCmd)
	rootCmd.AddCommand(suggestCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
