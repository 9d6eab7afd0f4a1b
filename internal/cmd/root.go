package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/parleyhq/parley/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "Multi-party negotiation session engine",
	Long: `Parley drives multi-party, turn-structured negotiations between
collaborator-generated and human participants, validates declared
agreements against per-participant affirmations, and retries
inconclusive rounds up to a configurable bound.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/parley/parley.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	config.InitViper(viper.GetString("config"))
}
