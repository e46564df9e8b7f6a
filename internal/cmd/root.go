package cmd

import (
	"github.com/spf13/cobra"

	"debate_arena/pkg/config"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "debate-arena",
	Short: "Real-time debate rooms with an AI judge",
	Long: `debate-arena hosts structured debate rooms: seat claims, turn order,
speaking timers, live votes and fallacy tags over websockets, and an
AI judge that delivers a verdict when the debate finishes.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./pkg/config/config.yaml)")
}

func loadConfig() (*config.Config, error) {
	return config.Load(configFile)
}
