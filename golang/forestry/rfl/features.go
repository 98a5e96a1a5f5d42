package rfl

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

//FeatureMetadata names the feature columns in order and lists the categorical ones.
type FeatureMetadata struct {
	Names       []string
	Categorical []int
}

//ParseFeatureMetadata takes a yml document with a features mapping. Each feature is declared
//either as 'continuous' or with a list of its category codes, in column order:
//
//	features:
//	  age: continuous
//	  color: [0, 1, 2]
func ParseFeatureMetadata(md []byte) (*FeatureMetadata, error) {
	metadata := struct {
		Features yaml.MapSlice `yaml:"features"`
	}{}
	if err := yaml.Unmarshal(md, &metadata); err != nil {
		return nil, errors.Wrap(err, "parsing yml features")
	}
	if len(metadata.Features) == 0 {
		return nil, errors.New("metadata has no feature information")
	}

	result := &FeatureMetadata{}
	seen := make(map[string]bool)
	for column, item := range metadata.Features {
		name := fmt.Sprintf("%v", item.Key)
		if seen[name] {
			return nil, errors.Errorf("feature %s is declared twice", name)
		}
		seen[name] = true

		switch declaration := item.Value.(type) {
		case string:
			if declaration != "continuous" {
				return nil, errors.Errorf("feature %s: unknown kind %q", name, declaration)
			}
		case []interface{}:
			if len(declaration) == 0 {
				return nil, errors.Errorf("categorical feature %s has no categories", name)
			}
			result.Categorical = append(result.Categorical, column)
		default:
			return nil, errors.Errorf("invalid declaration of feature %s of type %T", name, item.Value)
		}
		result.Names = append(result.Names, name)
	}
	return result, nil
}

//ReadFeatureMetadata reads and parses a yml feature metadata file.
func ReadFeatureMetadata(fileName string) (*FeatureMetadata, error) {
	md, err := os.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "reading features yml file %s", fileName)
	}
	metadata, err := ParseFeatureMetadata(md)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing features yml file %s", fileName)
	}
	return metadata, nil
}
