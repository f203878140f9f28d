package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"skycycle/internal/config"
)

// writeConfigFromEnv materializes a configuration handed over by a deployer
// into cfgPath so the regular load path picks it up.
func writeConfigFromEnv(cfgPath string) (bool, error) {
	jsonPayload := os.Getenv("SKYCYCLE_CONFIG_JSON")
	yamlPayload := os.Getenv("SKYCYCLE_CONFIG_YAML_B64")

	if jsonPayload == "" && yamlPayload == "" {
		return false, nil
	}
	if cfgPath == "" {
		return false, errors.New("configuration provided in environment but no --config path supplied")
	}

	var cfg config.Config
	if jsonPayload != "" {
		if err := json.Unmarshal([]byte(jsonPayload), &cfg); err != nil {
			return false, fmt.Errorf("decode config json: %w", err)
		}
	} else {
		data, err := base64.StdEncoding.DecodeString(yamlPayload)
		if err != nil {
			return false, fmt.Errorf("decode config yaml: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return false, fmt.Errorf("parse config yaml: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return false, fmt.Errorf("validate config: %w", err)
	}

	if err := config.Write(cfgPath, &cfg); err != nil {
		return false, err
	}
	return true, nil
}
