package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/entrhq/tugas/pkg/scraper"
	"github.com/entrhq/tugas/pkg/server"
)

var (
	fetchUsername string
	fetchPassword string
	fetchFormat   string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Run one login and print the tasks",
	Long: `Fetch performs a single invocation and prints the same JSON body the
HTTP endpoint returns. The password is read from --password or TUGAS_PASSWORD.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchUsername, "username", "u", "", "Portal username")
	fetchCmd.Flags().StringVar(&fetchPassword, "password", "", "Portal password (prefer TUGAS_PASSWORD)")
	fetchCmd.Flags().StringVarP(&fetchFormat, "format", "f", "json", "Output format: json or text")
}

func runFetch(cmd *cobra.Command, _ []string) error {
	if fetchFormat != "json" && fetchFormat != "text" {
		return fmt.Errorf("invalid format: %s (must be 'json' or 'text')", fetchFormat)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	creds := scraper.Credentials{Username: fetchUsername, Password: fetchPassword}
	if creds.Password == "" {
		creds.Password = os.Getenv("TUGAS_PASSWORD")
	}
	if err := creds.Validate(); err != nil {
		return err
	}

	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	defer svc.close()

	result, err := svc.fetcher.Fetch(context.Background(), creds)
	if err != nil {
		return err
	}

	return writeResult(cmd.OutOrStdout(), fetchFormat, result)
}

func writeResult(w io.Writer, format string, result *scraper.FetchResult) error {
	if format == "text" {
		return renderText(w, result)
	}

	out, err := json.MarshalIndent(server.NewTasksResponse(result), "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
