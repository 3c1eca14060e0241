package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hookdeploy/pkg/cmdutil"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration without starting the server",
	Long: `Load the configuration, validate the secret, branch list, and every
configured script path, and print a summary. Exits non-zero on any violation.

This runs exactly the validation that 'serve' performs before binding.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&configFile, "config", "c", getEnvOrDefault("HOOKDEPLOY_CONFIG_FILE", ""), "Path to hookdeploy.yaml configuration file")
}

func runCheck(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	fmt.Println("Configuration OK")
	fmt.Printf("  Allowed branches: %v\n", settings.Branches)
	fmt.Printf("  Serialize per repository: %v\n", settings.Serialize)
	fmt.Printf("  Listen: %s:%d\n", settings.Host, settings.Port)

	if settings.Global != nil {
		fmt.Printf("  Global script: %s\n", cmdutil.FormatCommand(settings.Global.Command))
		return nil
	}

	fmt.Printf("  Repositories (%d):\n", len(settings.Targets))
	for repo, target := range settings.Targets {
		fmt.Printf("    %-40s %s\n", repo, cmdutil.FormatCommand(target.Command))
	}

	return nil
}
