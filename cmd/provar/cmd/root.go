// Package cmd is the provar CLI.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	provar "github.com/provar-zk/provar"
)

var rootCmd = &cobra.Command{
	Use:     "provar",
	Short:   "proving service for recorded zkVM sessions",
	Version: provar.Version.String(),
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
