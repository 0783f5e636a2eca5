package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - injected at build time via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersion returns the current version string
func GetVersion() string {
	return version
}

var (
	configPath string
	rootCmd    = &cobra.Command{
		Use:     "taskd",
		Short:   "task-engine - a personal task manager with a priority-curve planner",
		Version: version,
		Long: `task-engine tracks tasks with dependencies, deadlines, recurrence, and
time-of-day windows, scores them with a priority curve, and builds a
daily plan by greedily fitting the highest-priority actionable tasks
into your work hours.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
