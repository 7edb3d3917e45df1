package core

import (
	"bytes"
	"os"

	round5 "github.com/BackendStack21/round5-go"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// paramsFile is the on-disk form of a parameter set. Base names a shipped
// set whose values are used for every field the file leaves out.
type paramsFile struct {
	Base              string `yaml:"base,omitempty"`
	round5.Parameters `yaml:",inline"`
}

// LoadParamsFile reads and validates a YAML parameter file. A leading ~ in
// path is expanded to the user's home directory.
func LoadParamsFile(path string) (round5.Parameters, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return round5.Parameters{}, round5.Errorf("LoadParamsFile", round5.ErrInvalidParameter, "%s: %v", path, err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return round5.Parameters{}, err
	}
	return ParamsFromYAML(data)
}

// ParamsFromYAML decodes and validates a YAML parameter set. Unknown keys
// are rejected.
//
//	base: R5ND_1KEM_0d
//	name: my-variant
//	h: 96
func ParamsFromYAML(data []byte) (round5.Parameters, error) {
	var head struct {
		Base string `yaml:"base"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return round5.Parameters{}, round5.Errorf("ParamsFromYAML", round5.ErrInvalidParameter, "%v", err)
	}

	var file paramsFile
	if head.Base != "" {
		base, err := GetParams(round5.SecurityLevel(head.Base))
		if err != nil {
			return round5.Parameters{}, err
		}
		file.Parameters = base
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return round5.Parameters{}, round5.Errorf("ParamsFromYAML", round5.ErrInvalidParameter, "%v", err)
	}
	if err := ValidateParams(file.Parameters); err != nil {
		return round5.Parameters{}, err
	}
	return file.Parameters, nil
}

// MarshalParamsYAML encodes a parameter set in the format ParamsFromYAML
// reads.
func MarshalParamsYAML(p round5.Parameters) ([]byte, error) {
	return yaml.Marshal(paramsFile{Parameters: p})
}
