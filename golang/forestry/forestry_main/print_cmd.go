package main

import (
	"github.com/spf13/cobra"
)

func printCmd() *cobra.Command {
	var srcConfig string
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print one tree of a forest model",
		RunE: func(cmd *cobra.Command, args []string) error {
			var treeConfig TreeConfig
			if err := loadConfig(srcConfig, &treeConfig); err != nil {
				return err
			}
			tree, err := treeConfig.selectTree()
			if err != nil {
				return err
			}
			return tree.PrintSubtree(cmd.OutOrStdout(), 0)
		},
	}
	cmd.Flags().StringVarP(&srcConfig, "config", "c", "forestry_config.json", "a config file for the run of the program")
	return cmd
}
