package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tarstars/bridged_forestry/golang/forestry/rfl"
)

func infoCmd() *cobra.Command {
	var srcConfig string
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Dump the flat form of one tree as var_id.npy and split_val.npy",
		RunE: func(cmd *cobra.Command, args []string) error {
			var treeConfig TreeConfig
			if err := loadConfig(srcConfig, &treeConfig); err != nil {
				return err
			}
			tree, err := treeConfig.selectTree()
			if err != nil {
				return err
			}
			if err := rfl.WriteNodeInfo(tree).WriteNpy(treeConfig.OutputDirectory); err != nil {
				return err
			}
			log.Info().Int("nodes", tree.NumNodes()).Int("leaves", tree.NumLeaves()).Msg("tree info written")
			fmt.Fprintf(cmd.OutOrStdout(), "nodes: %d, leaves: %d, depth: %d\n", tree.NumNodes(), tree.NumLeaves(), tree.Depth())
			return nil
		},
	}
	cmd.Flags().StringVarP(&srcConfig, "config", "c", "forestry_config.json", "a config file for the run of the program")
	return cmd
}
