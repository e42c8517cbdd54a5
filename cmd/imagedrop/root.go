package main

import (
	"github.com/spf13/cobra"

	"imagedrop/internal/config"
	"imagedrop/internal/pkg/logger"
)

var (
	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "imagedrop",
	Short: "Image intake tools",
	Long: `imagedrop validates images and zip archives the same way the API does.

Point it at local files to see which would be accepted, rejected or fail to extract,
or mint a token for calling the API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		level := cfg.LogLevel
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = "debug"
		}
		log = logger.NewWithWriter(cmd.ErrOrStderr(), level, cfg.LogFormat)
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log debug output to stderr")
	rootCmd.AddCommand(scanCmd, tokenCmd)
}
