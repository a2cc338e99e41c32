package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-enroll/pkg/enroll"
)

// Config holds the enrollment client configuration.
type Config struct {
	Service struct {
		BaseURL     string `yaml:"base_url" env:"ENROLL_BASE_URL"`
		CreatePath  string `yaml:"create_path" env:"ENROLL_CREATE_PATH"`
		Method      string `yaml:"method" env:"ENROLL_METHOD"`
		OpenAPI     string `yaml:"openapi" env:"ENROLL_OPENAPI"`
		OperationID string `yaml:"operation_id" env:"ENROLL_OPERATION_ID"`
		ResultsPath string `yaml:"results_path" env:"ENROLL_RESULTS_PATH"`
		Token       string `yaml:"token" env:"ENROLL_TOKEN"`
		Timeout     string `yaml:"timeout" env:"ENROLL_TIMEOUT"`
	} `yaml:"service"`

	Departments struct {
		Names       []string `yaml:"names" env:"ENROLL_DEPARTMENTS"`
		URL         string   `yaml:"url" env:"ENROLL_DEPARTMENTS_URL"`
		ResultsPath string   `yaml:"results_path" env:"ENROLL_DEPARTMENTS_RESULTS_PATH"`
		NameField   string   `yaml:"name_field" env:"ENROLL_DEPARTMENTS_NAME_FIELD"`
	} `yaml:"departments"`

	Form struct {
		EmailReset     string `yaml:"email_reset" env:"ENROLL_EMAIL_RESET"`
		AvatarMaxBytes int64  `yaml:"avatar_max_bytes" env:"ENROLL_AVATAR_MAX_BYTES"`
	} `yaml:"form"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Pretty bool   `yaml:"pretty" env:"LOG_PRETTY"`
		File   string `yaml:"file" env:"LOG_FILE"`
	} `yaml:"logging"`
}

// Load reads the YAML file at path when it exists, then applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := processStructFields(cfg); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Service.BaseURL = "http://localhost:5000"
	cfg.Service.CreatePath = "/api/admin/addstudent"
	cfg.Service.Method = "POST"
	cfg.Service.OperationID = "addStudent"
	cfg.Service.Timeout = "30s"

	cfg.Departments.NameField = "department"

	cfg.Form.EmailReset = enroll.ResetEmailOnEmailError.String()
	cfg.Form.AvatarMaxBytes = 2 << 20

	cfg.Logging.Level = "info"
}

func validate(cfg *Config) error {
	u, err := url.Parse(strings.TrimSpace(cfg.Service.BaseURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("service base_url must be an http(s) URL, got %q", cfg.Service.BaseURL)
	}
	if strings.TrimSpace(cfg.Service.CreatePath) == "" && strings.TrimSpace(cfg.Service.OpenAPI) == "" {
		return fmt.Errorf("service create_path or openapi is required")
	}
	if _, err := cfg.RequestTimeout(); err != nil {
		return err
	}
	if len(cfg.Departments.Names) == 0 && strings.TrimSpace(cfg.Departments.URL) == "" {
		return fmt.Errorf("departments names or url is required")
	}
	if _, err := enroll.ParseEmailResetPolicy(cfg.Form.EmailReset); err != nil {
		return err
	}
	if cfg.Form.AvatarMaxBytes < 0 {
		return fmt.Errorf("form avatar_max_bytes must not be negative")
	}
	switch strings.ToLower(cfg.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging level %q", cfg.Logging.Level)
	}
	return nil
}

// RequestTimeout parses the service timeout.
func (c *Config) RequestTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(c.Service.Timeout))
	if err != nil {
		return 0, fmt.Errorf("invalid service timeout format: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("service timeout must be positive")
	}
	return d, nil
}

// EmailReset returns the configured email reset policy.
func (c *Config) EmailReset() enroll.EmailResetPolicy {
	policy, _ := enroll.ParseEmailResetPolicy(c.Form.EmailReset)
	return policy
}
