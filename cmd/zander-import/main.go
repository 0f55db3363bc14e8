package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/zander/internal/client"
	"github.com/JonMunkholm/zander/internal/config"
	"github.com/JonMunkholm/zander/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	apiURL   string
	apiToken string
)

var rootCmd = &cobra.Command{
	Use:   "zander-import",
	Short: "Import products into the Zander catalog from a CSV file",
	Long: `Validate and import a product CSV against the Zander API.

Every row is checked by the server before anything is written. Rows with
errors are never imported; rows whose SKU already exists are skipped or
updated depending on --duplicates. Row numbers in the output are line numbers
in the file, so blank lines and rows without a name are counted but not listed.

Credentials come from ZANDER_API_URL and ZANDER_API_TOKEN (a .env file in the
working directory is honoured) or from --api-url and --token.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (or set ZANDER_API_URL)")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", "", "Bearer token (or set ZANDER_API_TOKEN)")

	runCmd.Flags().StringVar(&duplicates, "duplicates", "skip", "Policy for existing SKUs: skip or update")
	runCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Import without asking for confirmation")
	templateCmd.Flags().StringVarP(&templateOut, "output", "o", "", "Write the template to this file instead of stdout")

	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(tuiCmd)
}

// newClient builds an API client from the environment and flags.
func newClient() (*client.Client, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if apiToken != "" {
		cfg.Token = apiToken
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	return client.New(cfg.APIURL, client.Credentials{Token: cfg.Token}, client.WithTimeout(cfg.Timeout)), nil
}

func main() {
	// Environment wins over .env for the client so one-off overrides work.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
