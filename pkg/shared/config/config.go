package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

const (
	// DefaultConfigFile is looked up in the working directory when no --config flag is given.
	DefaultConfigFile = "magelint.yml"

	DefaultToolName       = "magelint"
	DefaultInformationURI = "https://github.com/scan-io-git/magelint"
)

type Config struct {
	Logger     Logger     `yaml:"logger"`
	HTTPClient HTTPClient `yaml:"http_client"`
	Scan       Scan       `yaml:"scan"`
	Fixer      Fixer      `yaml:"fixer"`
	Report     Report     `yaml:"report"`
	Gate       Gate       `yaml:"gate"`
}

type Logger struct {
	Level           string `yaml:"level"`
	DisableTime     *bool  `yaml:"disable_time"`
	JSONFormat      *bool  `yaml:"json_format"`
	IncludeLocation *bool  `yaml:"include_location"`
}

type HTTPClient struct {
	Debug            *bool           `yaml:"debug"`
	RetryCount       int             `yaml:"retry_count"`
	RetryWaitTime    time.Duration   `yaml:"retry_wait_time"`
	RetryMaxWaitTime time.Duration   `yaml:"retry_max_wait_time"`
	Timeout          time.Duration   `yaml:"timeout"`
	TLSClientConfig  TLSClientConfig `yaml:"tls_client_config"`
	Proxy            Proxy           `yaml:"proxy"`
}

type TLSClientConfig struct {
	Verify *bool `yaml:"verify"`
}

type Proxy struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Scan holds the file collection defaults. Command line flags extend these lists.
type Scan struct {
	Extensions   []string `yaml:"extensions"`
	ExcludeDirs  []string `yaml:"exclude_dirs"`
	ExcludeFiles []string `yaml:"exclude_files"`
}

// Fixer points at the remote service that reports which rules it can rewrite.
type Fixer struct {
	URL      string `yaml:"url"`
	TokenEnv string `yaml:"token_env"`
}

type Report struct {
	Format         string `yaml:"format"`
	ToolName       string `yaml:"tool_name"`
	InformationURI string `yaml:"information_uri"`
}

type Gate struct {
	FailOn string `yaml:"fail_on"`
}

func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return err
	}

	return nil
}

// LoadConfig reads the YAML configuration from configPath.
// A missing file at the default location is not an error: an empty Config is returned
// and every consumer falls back to its defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	if configPath == "" {
		configPath = DefaultConfigFile
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return config, nil
		}
	}

	if err := LoadYAML(configPath, config); err != nil {
		return nil, fmt.Errorf("failed to load config %q: %w", configPath, err)
	}

	return config, nil
}

// GetToolName returns the SARIF driver name.
func GetToolName(cfg *Config) string {
	if cfg == nil {
		return DefaultToolName
	}
	return SetThen(cfg.Report.ToolName, DefaultToolName)
}

// GetInformationURI returns the SARIF driver information URI.
func GetInformationURI(cfg *Config) string {
	if cfg == nil {
		return DefaultInformationURI
	}
	return SetThen(cfg.Report.InformationURI, DefaultInformationURI)
}

// GetFixerToken reads the fixer token from the environment variable named in the config.
func GetFixerToken(cfg *Config) string {
	if cfg == nil || cfg.Fixer.TokenEnv == "" {
		return os.Getenv("MAGELINT_FIXER_TOKEN")
	}
	return os.Getenv(cfg.Fixer.TokenEnv)
}
