// ABOUTME: Cobra command for interactive castkeep configuration.
// ABOUTME: Launches a bubbletea TUI wizard for data directory and feed delay.
package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"castkeep/internal/config"
	"castkeep/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure castkeep interactively",
	Long:  "Interactive wizard to configure the data directory and sync feed delay.",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	model := tui.NewSetupModel(cfg.DataDir, cfg.FeedDelayMS)

	p := tea.NewProgram(model)
	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	final := result.(tui.SetupModel)
	if !final.ShouldSave() {
		fmt.Println("Setup canceled.")
		return nil
	}

	cfg.DataDir, cfg.FeedDelayMS = final.Result()

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("Config saved to %s\n", config.GetConfigPath())
	return nil
}
