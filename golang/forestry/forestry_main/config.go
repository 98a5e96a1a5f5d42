package main

import (
	"encoding/json"
	"os"
	"runtime"

	"github.com/pkg/errors"
	"github.com/tarstars/bridged_forestry/golang/forestry/rfl"
)

func decodeConfig(srcConfig string, out interface{}) error {
	file, err := os.Open(srcConfig)
	if err != nil {
		return errors.Wrapf(err, "open config %s", srcConfig)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return errors.Wrapf(err, "decode config %s", srcConfig)
	}
	return nil
}

type PredictConfig struct {
	TrainFeaturesFileName string `json:"filename_train_features"`
	TrainTargetFileName   string `json:"filename_train_target"`
	MetadataFileName      string `json:"filename_metadata"`
	FeaturesFileName      string `json:"filename_features"`
	ModelFileName         string `json:"filename_model"`
	PredictionFileName    string `json:"filename_prediction"`
	WeightMatrixFileName  string `json:"filename_weight_matrix"`
	Aggregation           string `json:"aggregation"`
	ThreadsNum            int    `json:"threads_num"`
	TreesNumber           int    `json:"trees_number"`
}

//applyDefaults fills the optional fields. Asking for a weight matrix file selects the
//weightMatrix aggregation.
func (config *PredictConfig) applyDefaults() {
	if config.Aggregation == "" {
		config.Aggregation = rfl.AggregationAverage
		if config.WeightMatrixFileName != "" {
			config.Aggregation = rfl.AggregationWeightMatrix
		}
	}
	if config.ThreadsNum <= 0 {
		config.ThreadsNum = runtime.NumCPU()
	}
}

func (config *PredictConfig) Validate() error {
	required := []struct{ key, value string }{
		{"filename_train_features", config.TrainFeaturesFileName},
		{"filename_train_target", config.TrainTargetFileName},
		{"filename_metadata", config.MetadataFileName},
		{"filename_features", config.FeaturesFileName},
		{"filename_model", config.ModelFileName},
		{"filename_prediction", config.PredictionFileName},
	}
	for _, field := range required {
		if field.value == "" {
			return errors.Errorf("required %s is not set", field.key)
		}
	}
	if config.WeightMatrixFileName != "" && config.Aggregation != rfl.AggregationWeightMatrix {
		return errors.Errorf("filename_weight_matrix requires the %s aggregation", rfl.AggregationWeightMatrix)
	}
	return nil
}

type GraphConfig struct {
	ModelFileName     string `json:"filename_model"`
	MetadataFileName  string `json:"filename_metadata"`
	FigureType        string `json:"figure_type"`
	PicturesDirectory string `json:"pictures_directory"`
	DumpPrefix        string `json:"dump_prefix"`
}

func (config *GraphConfig) applyDefaults() {
	if config.FigureType == "" {
		config.FigureType = "svg"
	}
	if config.PicturesDirectory == "" {
		config.PicturesDirectory = "."
	}
	if config.DumpPrefix == "" {
		config.DumpPrefix = "tree"
	}
}

func (config *GraphConfig) Validate() error {
	if config.ModelFileName == "" {
		return errors.New("required filename_model is not set")
	}
	return nil
}

//TreeConfig selects one tree of a model, it is shared by print and info.
type TreeConfig struct {
	ModelFileName   string `json:"filename_model"`
	TreeIndex       int    `json:"tree_index"`
	OutputDirectory string `json:"output_directory"`
}

func (config *TreeConfig) applyDefaults() {
	if config.OutputDirectory == "" {
		config.OutputDirectory = "."
	}
}

func (config *TreeConfig) Validate() error {
	if config.ModelFileName == "" {
		return errors.New("required filename_model is not set")
	}
	if config.TreeIndex < 0 {
		return errors.Errorf("negative tree_index %d", config.TreeIndex)
	}
	return nil
}

//selectTree loads the model and returns the tree chosen by config.
func (config *TreeConfig) selectTree() (*rfl.RFNode, error) {
	forest, err := rfl.LoadForest(config.ModelFileName)
	if err != nil {
		return nil, err
	}
	if config.TreeIndex >= len(forest.Trees) {
		return nil, errors.Errorf("tree_index %d, the model has %d trees", config.TreeIndex, len(forest.Trees))
	}
	return forest.Trees[config.TreeIndex], nil
}

type validatedConfig interface {
	applyDefaults()
	Validate() error
}

//loadConfig decodes, completes and validates a config file.
func loadConfig(srcConfig string, config validatedConfig) error {
	if err := decodeConfig(srcConfig, config); err != nil {
		return err
	}
	config.applyDefaults()
	return config.Validate()
}
