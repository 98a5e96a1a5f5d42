package main

import (
	"github.com/spf13/cobra"
	"github.com/tarstars/bridged_forestry/golang/forestry/rfl"
)

func graphCmd() *cobra.Command {
	var srcConfig string
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render the trees of a forest model",
		RunE: func(cmd *cobra.Command, args []string) error {
			var graphConfig GraphConfig
			if err := loadConfig(srcConfig, &graphConfig); err != nil {
				return err
			}
			return graph(graphConfig)
		},
	}
	cmd.Flags().StringVarP(&srcConfig, "config", "c", "forestry_config.json", "a config file for the run of the program")
	return cmd
}

func graph(graphConfig GraphConfig) error {
	forest, err := rfl.LoadForest(graphConfig.ModelFileName)
	if err != nil {
		return err
	}

	var categorical []int
	if graphConfig.MetadataFileName != "" {
		metadata, err := rfl.ReadFeatureMetadata(graphConfig.MetadataFileName)
		if err != nil {
			return err
		}
		categorical = metadata.Categorical
	}
	return forest.RenderTrees(graphConfig.DumpPrefix, graphConfig.FigureType, graphConfig.PicturesDirectory, categorical)
}
