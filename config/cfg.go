package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	// PipelineConfig selects and tunes one of the two canonical stylesheet
	// compositions (css.NewDefaultConfig / css.NewEnhancedConfig).
	PipelineConfig struct {
		Composition       string   `yaml:"composition" validate:"required,oneof=default enhanced"`
		TagToRemove       string   `yaml:"tag_to_remove,omitempty"`
		SentinelTag       string   `yaml:"sentinel_tag,omitempty"`
		Extensions        []string `yaml:"extensions" validate:"required,dive,required"`
		RaiseOnImportErr  bool     `yaml:"raise_on_import_error"`
		RaiseOnCompileErr bool     `yaml:"raise_on_compile_error"`
	}

	// CacheConfig describes the two-tier cache behind the pipeline.
	CacheConfig struct {
		DiskDir              string `yaml:"disk_dir" sanitize:"path_clean" validate:"required,dirpath"`
		IndexPath            string `yaml:"index_path" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
		DeleteInvalidEntries bool   `yaml:"delete_invalid_entries"`
	}

	// ServerConfig describes the HTTP front-end that exposes the pipeline.
	ServerConfig struct {
		RootDir    string       `yaml:"root_dir" sanitize:"path_clean" validate:"required,dirpath"`
		Listen     string       `yaml:"listen" validate:"required,hostname_port"`
		AdminToken SecretString `yaml:"admin_token,omitempty"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Server    ServerConfig   `yaml:"server"`
		Pipeline  PipelineConfig `yaml:"pipeline"`
		Cache     CacheConfig    `yaml:"cache"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here.
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of the expanded configuration template to
// provide sane defaults, and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates a configuration file from the template and returns it as
// a byte slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
