package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/kindlab/kindstack/internal/config"
	"github.com/kindlab/kindstack/internal/config/wizard"
)

// Factory function variables for init - can be replaced in tests.
var (
	fileExists = func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}

	runWizard = wizard.RunWizard

	writeConfig = config.WriteFile

	stdinIsTTY = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}
)

// Init creates kindstack.yaml, interactively when attached to a terminal
// and from defaults otherwise (CI, piped input).
func Init(ctx context.Context, outputPath string) error {
	if fileExists(outputPath) {
		fmt.Printf("Warning: %s already exists and will be overwritten.\n\n", outputPath)
	}

	var cfg *config.Config
	if stdinIsTTY() {
		printWelcome()

		result, err := runWizard(ctx)
		if err != nil {
			return fmt.Errorf("wizard canceled: %w", err)
		}
		cfg = result.ToConfig()
	} else {
		fmt.Println("No terminal detected, writing default configuration.")
		cfg = config.Default()
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := writeConfig(outputPath, cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(outputPath, cfg)
	return nil
}

// printWelcome prints the welcome message.
func printWelcome() {
	fmt.Println()
	fmt.Println("kindstack - local observability and automation stack")
	fmt.Println("====================================================")
	fmt.Println()
	fmt.Println("This wizard creates a configuration with sensible defaults.")
	fmt.Println()
}

// printInitSuccess prints the summary and next steps.
func printInitSuccess(outputPath string, cfg *config.Config) {
	fmt.Println()
	fmt.Println("Configuration saved!")
	fmt.Println()
	fmt.Printf("  File: %s\n", outputPath)
	fmt.Println()

	fmt.Println("Summary")
	fmt.Println("-------")
	fmt.Printf("  Cluster:    %s (%d worker(s))\n", cfg.ClusterName, cfg.Workers)
	fmt.Printf("  Components: %v\n", cfg.EnabledComponents())
	for _, b := range cfg.Bridges {
		fmt.Printf("  Bridge:     %s on 127.0.0.1:%d\n", b.Name, b.LocalPort)
	}
	fmt.Println()

	fmt.Println("Next Steps")
	fmt.Println("----------")
	fmt.Printf("  1. Review %s if needed\n", outputPath)
	fmt.Println("  2. Bring up the stack:")
	fmt.Println("     kindstack up")
	fmt.Println()
}
