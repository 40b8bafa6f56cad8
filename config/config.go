package config

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Load reads the yaml file at path into config.
func Load(path string, config interface{}) error {
	if path == "" {
		return errors.New("please setup the config file path")
	}

	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "fail to read config file")
	}

	if err := yaml.UnmarshalStrict(raw, config); err != nil {
		return errors.Wrap(err, "fail to decode config file")
	}

	return nil
}
