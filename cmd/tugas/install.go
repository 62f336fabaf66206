package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entrhq/tugas/pkg/browser"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Download the Playwright driver and Chromium",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := browser.Install(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Chromium installed.")
		return nil
	},
}
