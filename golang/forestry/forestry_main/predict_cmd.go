package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tarstars/bridged_forestry/golang/forestry/rfl"
)

func predictCmd() *cobra.Command {
	var srcConfig string
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict a query matrix with a forest model",
		Long:  `Load a training set, a forest model and a query matrix, write the averaged predictions and optionally the weight matrix of query rows over training rows`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var predictConfig PredictConfig
			if err := loadConfig(srcConfig, &predictConfig); err != nil {
				return err
			}
			return predict(predictConfig)
		},
	}
	cmd.Flags().StringVarP(&srcConfig, "config", "c", "forestry_config.json", "a config file for the run of the program")
	return cmd
}

func predict(predictConfig PredictConfig) error {
	trainingData, err := rfl.ReadDataFrame(
		predictConfig.TrainFeaturesFileName,
		predictConfig.TrainTargetFileName,
		predictConfig.MetadataFileName,
	)
	if err != nil {
		return err
	}
	xNew, err := rfl.ReadNpy(predictConfig.FeaturesFileName)
	if err != nil {
		return err
	}
	forest, err := rfl.LoadForest(predictConfig.ModelFileName)
	if err != nil {
		return err
	}

	result, err := forest.Predict(xNew, trainingData, rfl.PredictParams{
		Aggregation: predictConfig.Aggregation,
		ThreadsNum:  predictConfig.ThreadsNum,
		TreesNumber: predictConfig.TreesNumber,
	})
	if err != nil {
		return err
	}
	log.Info().Int("rows", len(result.Predictions)).Int("trees", len(forest.Trees)).Msg("predicted")

	if err := rfl.WriteNpy(predictConfig.PredictionFileName, result.Predictions); err != nil {
		return err
	}
	if predictConfig.WeightMatrixFileName != "" {
		return rfl.WriteNpy(predictConfig.WeightMatrixFileName, result.WeightMatrix.Dense())
	}
	return nil
}
