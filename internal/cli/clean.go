package cli

import (
	"github.com/spf13/cobra"

	"github.com/fjglira/GoRPA-OrderBot/internal/pipeline"
)

var cleanAll bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove receipts and the archive of a previous run",
	Long:  `Deletes the receipts directory and the receipts archive. With --all the downloaded orders file is removed too.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		if err := pipeline.Clean(cfg, cleanAll, log); err != nil {
			return err
		}
		log.WithField("directory", cfg.Output.Directory).Info("Output cleaned")
		return nil
	},
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanAll, "all", false, "also remove the downloaded orders file")
	rootCmd.AddCommand(cleanCmd)
}
