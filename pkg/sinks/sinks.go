package sinks

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// Supported sink types.
	TypeStdout = "stdout"
	TypeHTTP   = "http"
	TypeSQS    = "sqs"
	TypeSNS    = "sns"
	TypePubSub = "pubsub"

	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
)

// sinksFile is the top level of a sinks YAML or JSON file.
type sinksFile struct {
	Sinks []SinkConfig `json:"sinks" yaml:"sinks"`
}

// SinkConfig represents a single sink entry declared in config files.
type SinkConfig struct {
	ID      string            `json:"id" yaml:"id"`
	Type    string            `json:"type" yaml:"type"`
	Enabled *bool             `json:"enabled" yaml:"enabled"`
	Stdout  *StdoutSinkConfig `json:"stdout" yaml:"stdout"`
	HTTP    *HTTPSinkConfig   `json:"http" yaml:"http"`
	SQS     *AWSQueueConfig   `json:"sqs" yaml:"sqs"`
	SNS     *AWSTopicConfig   `json:"sns" yaml:"sns"`
	PubSub  *GCPTopicConfig   `json:"pubsub" yaml:"pubsub"`
}

// StdoutSinkConfig controls terminal output.
type StdoutSinkConfig struct {
	Pretty bool `json:"pretty" yaml:"pretty"`
	// MaxChars truncates text bodies; 0 prints everything.
	MaxChars int `json:"max_chars" yaml:"max_chars"`
}

// HTTPSinkConfig holds generic HTTP webhook settings.
type HTTPSinkConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// AWSCredentials optionally pins static credentials instead of the default chain.
type AWSCredentials struct {
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
	SessionToken    string `json:"session_token" yaml:"session_token"`
}

// AWSQueueConfig holds AWS SQS specific settings.
type AWSQueueConfig struct {
	QueueURL    string          `json:"uri" yaml:"uri"`
	Region      string          `json:"region" yaml:"region"`
	Credentials *AWSCredentials `json:"credentials" yaml:"credentials"`
}

// AWSTopicConfig holds AWS SNS specific settings.
type AWSTopicConfig struct {
	TopicARN    string          `json:"topic_arn" yaml:"topic_arn"`
	Region      string          `json:"region" yaml:"region"`
	Credentials *AWSCredentials `json:"credentials" yaml:"credentials"`
}

// GCPTopicConfig holds Google Cloud Pub/Sub settings.
type GCPTopicConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// ConfigRegistry holds the sink entries read from a sinks file. It is
// read-only after loading.
type ConfigRegistry struct {
	sinks []SinkConfig
	byID  map[string]int
}

// LoadRegistry reads a .yaml, .yml or .json sinks file.
func LoadRegistry(path string) (*ConfigRegistry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sinks file path is empty")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sinks file: %w", err)
	}

	var file sinksFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &file)
	case ".json":
		err = json.Unmarshal(raw, &file)
	default:
		return nil, fmt.Errorf("sinks file %q: unsupported extension %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode sinks file: %w", err)
	}
	if len(file.Sinks) == 0 {
		return nil, errors.New("sinks file contains no sinks entries")
	}
	return newConfigRegistry(file.Sinks)
}

// StdoutRegistry is the registry used when no sinks file is configured.
func StdoutRegistry() *ConfigRegistry {
	reg, _ := newConfigRegistry([]SinkConfig{{ID: "stdout", Type: TypeStdout, Stdout: &StdoutSinkConfig{Pretty: true}}})
	return reg
}

func newConfigRegistry(entries []SinkConfig) (*ConfigRegistry, error) {
	reg := &ConfigRegistry{
		sinks: make([]SinkConfig, 0, len(entries)),
		byID:  make(map[string]int, len(entries)),
	}
	for i, entry := range entries {
		cfg := sanitizeSinkConfig(entry)
		if err := validateSinkConfig(cfg); err != nil {
			return nil, fmt.Errorf("sinks[%d]: %w", i, err)
		}
		if _, dup := reg.byID[cfg.ID]; dup {
			return nil, fmt.Errorf("duplicate sink id %q", cfg.ID)
		}
		reg.byID[cfg.ID] = len(reg.sinks)
		reg.sinks = append(reg.sinks, cfg)
	}
	return reg, nil
}

// sanitizeSinkConfig trims fields and fills per-type defaults.
func sanitizeSinkConfig(cfg SinkConfig) SinkConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))

	switch {
	case cfg.Type == TypeStdout && cfg.Stdout == nil:
		cfg.Stdout = &StdoutSinkConfig{}
	case cfg.HTTP != nil:
		c := *cfg.HTTP
		c.URL = strings.TrimSpace(c.URL)
		c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
		if c.Method == "" {
			c.Method = httpDefaultMethod
		}
		if c.TimeoutSeconds <= 0 {
			c.TimeoutSeconds = httpDefaultTimeoutSeconds
		}
		headers := make(map[string]string, len(c.Headers))
		for k, v := range c.Headers {
			if k, v = strings.TrimSpace(k), strings.TrimSpace(v); k != "" && v != "" {
				headers[k] = v
			}
		}
		c.Headers = headers
		cfg.HTTP = &c
	case cfg.SQS != nil:
		c := *cfg.SQS
		c.QueueURL, c.Region = strings.TrimSpace(c.QueueURL), strings.TrimSpace(c.Region)
		cfg.SQS = &c
	case cfg.SNS != nil:
		c := *cfg.SNS
		c.TopicARN, c.Region = strings.TrimSpace(c.TopicARN), strings.TrimSpace(c.Region)
		cfg.SNS = &c
	case cfg.PubSub != nil:
		c := *cfg.PubSub
		c.ProjectID, c.Topic = strings.TrimSpace(c.ProjectID), strings.TrimSpace(c.Topic)
		c.CredentialsFile = strings.TrimSpace(c.CredentialsFile)
		cfg.PubSub = &c
	}
	return cfg
}

// validateSinkConfig checks that the block for cfg.Type carries its required fields.
func validateSinkConfig(cfg SinkConfig) error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	var missing string
	switch cfg.Type {
	case TypeStdout:
	case TypeHTTP:
		if cfg.HTTP == nil || cfg.HTTP.URL == "" {
			missing = "http.url"
		}
	case TypeSQS:
		if cfg.SQS == nil || cfg.SQS.QueueURL == "" || cfg.SQS.Region == "" {
			missing = "sqs.uri and sqs.region"
		}
	case TypeSNS:
		if cfg.SNS == nil || cfg.SNS.TopicARN == "" || cfg.SNS.Region == "" {
			missing = "sns.topic_arn and sns.region"
		}
	case TypePubSub:
		if cfg.PubSub == nil || cfg.PubSub.ProjectID == "" || cfg.PubSub.Topic == "" {
			missing = "pubsub.project_id and pubsub.topic"
		}
	case "":
		return fmt.Errorf("sink %q: type is required", cfg.ID)
	default:
		return fmt.Errorf("sink %q: unsupported type %q", cfg.ID, cfg.Type)
	}
	if missing != "" {
		return fmt.Errorf("sink %q: %s required", cfg.ID, missing)
	}
	return nil
}

// ByID returns the sink entry with the given id.
func (r *ConfigRegistry) ByID(id string) (SinkConfig, bool) {
	if r == nil {
		return SinkConfig{}, false
	}
	i, ok := r.byID[strings.TrimSpace(id)]
	if !ok {
		return SinkConfig{}, false
	}
	return r.sinks[i], true
}

// All returns every entry in file order.
func (r *ConfigRegistry) All() []SinkConfig {
	if r == nil {
		return nil
	}
	return append([]SinkConfig(nil), r.sinks...)
}

// Enabled returns the entries not switched off with enabled: false.
func (r *ConfigRegistry) Enabled() []SinkConfig {
	if r == nil {
		return nil
	}
	out := make([]SinkConfig, 0, len(r.sinks))
	for _, cfg := range r.sinks {
		if cfg.Enabled == nil || *cfg.Enabled {
			out = append(out, cfg)
		}
	}
	return out
}
