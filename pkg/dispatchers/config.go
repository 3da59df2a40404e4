package dispatchers

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

const (
	// Supported dispatcher types.
	TypeSMS   = "sms"
	TypeQueue = "queue"
	TypeHTTP  = "http"

	// Supported SMS providers.
	SMSProviderTwilio = "twilio"
	SMSProviderAWSSNS = "aws-sns"

	// Supported queue providers.
	QueueProviderAWSSQS = "aws-sqs"
	QueueProviderGCP    = "gcp"

	httpDefaultTimeoutSeconds = 5
	twilioDefaultTimeout      = 15 * time.Second
	snsDefaultSMSType         = "Transactional"
)

// configFile represents the structure of the dispatchers configuration file.
type configFile struct {
	Dispatchers []DispatcherConfig `json:"dispatchers" yaml:"dispatchers"`
}

// DispatcherConfig represents a single dispatcher entry.
type DispatcherConfig struct {
	ID      string                 `json:"id" yaml:"id"`
	Type    string                 `json:"type" yaml:"type"`
	Enabled *bool                  `json:"enabled" yaml:"enabled"`
	SMS     *SMSDispatcherConfig   `json:"sms" yaml:"sms"`
	Queue   *QueueDispatcherConfig `json:"queue" yaml:"queue"`
	HTTP    *HTTPDispatcherConfig  `json:"http" yaml:"http"`
}

// SMSDispatcherConfig selects an SMS provider and the recipient number.
type SMSDispatcherConfig struct {
	Provider string           `json:"provider" yaml:"provider"`
	To       string           `json:"to" yaml:"to"`
	Twilio   *TwilioConfig    `json:"twilio" yaml:"twilio"`
	SNS      *AWSSNSSMSConfig `json:"sns" yaml:"sns"`
}

// TwilioConfig holds Twilio account credentials and the sender number.
// Timeout wins over TimeoutSeconds when set in code.
type TwilioConfig struct {
	AccountSID     string        `json:"account_sid" yaml:"account_sid"`
	AuthToken      string        `json:"auth_token" yaml:"auth_token"`
	From           string        `json:"from" yaml:"from"`
	BaseURL        string        `json:"base_url" yaml:"base_url"`
	TimeoutSeconds int           `json:"timeout_seconds" yaml:"timeout_seconds"`
	Timeout        time.Duration `json:"-" yaml:"-"`
}

// AWSSNSSMSConfig holds settings for direct-to-phone SNS publishing.
type AWSSNSSMSConfig struct {
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
	SenderID        string `json:"sender_id" yaml:"sender_id"`
	SMSType         string `json:"sms_type" yaml:"sms_type"`
}

// QueueDispatcherConfig allows selecting a cloud queue provider.
type QueueDispatcherConfig struct {
	Provider string          `json:"provider" yaml:"provider"`
	AWS      *AWSSQSConfig   `json:"aws" yaml:"aws"`
	GCP      *GCPQueueConfig `json:"gcp" yaml:"gcp"`
}

// AWSSQSConfig holds AWS SQS specific settings.
type AWSSQSConfig struct {
	QueueURL        string `json:"uri" yaml:"uri"`
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// GCPQueueConfig holds the minimal Pub/Sub topic settings.
type GCPQueueConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// HTTPDispatcherConfig holds generic webhook settings.
type HTTPDispatcherConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// LoadFile reads dispatcher entries from a YAML/JSON file, expanding ${VAR}
// references from the environment. Every entry is normalized and validated.
func LoadFile(path string) ([]DispatcherConfig, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("dispatchers file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dispatchers file: %w", err)
	}

	file, err := decodeConfigFile([]byte(os.ExpandEnv(string(raw))), filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(file.Dispatchers) == 0 {
		return nil, errors.New("dispatchers file contains no dispatchers entries")
	}
	return Prepare(file.Dispatchers...)
}

// Prepare normalizes cfgs and rejects invalid entries and duplicate ids.
func Prepare(cfgs ...DispatcherConfig) ([]DispatcherConfig, error) {
	out := make([]DispatcherConfig, 0, len(cfgs))
	seen := make(map[string]struct{}, len(cfgs))
	for i, cfg := range cfgs {
		cfg = cfg.normalized()
		if err := cfg.validate(); err != nil {
			return nil, fmt.Errorf("dispatchers[%d]: %w", i, err)
		}
		if _, dup := seen[cfg.ID]; dup {
			return nil, fmt.Errorf("duplicate dispatcher id %q", cfg.ID)
		}
		seen[cfg.ID] = struct{}{}
		out = append(out, cfg)
	}
	return out, nil
}

// Enabled drops entries switched off with enabled: false.
func Enabled(cfgs []DispatcherConfig) []DispatcherConfig {
	var out []DispatcherConfig
	for _, cfg := range cfgs {
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out
}

// EnabledValue returns enabled flag defaulting to true.
func (cfg DispatcherConfig) EnabledValue() bool {
	return cfg.Enabled == nil || *cfg.Enabled
}

func decodeConfigFile(data []byte, ext string) (configFile, error) {
	var (
		file   configFile
		name   string
		decode func([]byte, any) error
	)
	switch strings.ToLower(strings.TrimSpace(ext)) {
	case ".yaml", ".yml":
		name, decode = "yaml", yaml.Unmarshal
	case ".json":
		name, decode = "json", json.Unmarshal
	default:
		return configFile{}, fmt.Errorf("dispatchers file format %q not recognized (expected YAML or JSON)", ext)
	}
	if err := decode(data, &file); err != nil {
		return configFile{}, fmt.Errorf("decode %s dispatchers: %w", name, err)
	}
	return file, nil
}

func (cfg DispatcherConfig) normalized() DispatcherConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = lowerTrim(cfg.Type)
	if cfg.SMS != nil {
		sc := cfg.SMS.normalized()
		cfg.SMS = &sc
	}
	if cfg.Queue != nil {
		qc := cfg.Queue.normalized()
		cfg.Queue = &qc
	}
	if cfg.HTTP != nil {
		hc := cfg.HTTP.normalized()
		cfg.HTTP = &hc
	}
	return cfg
}

func (cfg DispatcherConfig) validate() error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}

	var err error
	switch cfg.Type {
	case "":
		err = errors.New("type is required")
	case TypeSMS:
		err = cfg.SMS.validate()
	case TypeQueue:
		err = cfg.Queue.validate()
	case TypeHTTP:
		err = cfg.HTTP.validate()
	default:
		err = fmt.Errorf("type %q not supported", cfg.Type)
	}
	if err != nil {
		return fmt.Errorf("dispatcher %q: %w", cfg.ID, err)
	}
	return nil
}

func (c SMSDispatcherConfig) normalized() SMSDispatcherConfig {
	c.Provider = lowerTrim(c.Provider)
	c.To = strings.TrimSpace(c.To)
	if c.Twilio != nil {
		tw := c.Twilio.normalized()
		c.Twilio = &tw
	}
	if c.SNS != nil {
		sns := c.SNS.normalized()
		c.SNS = &sns
	}
	return c
}

func (c *SMSDispatcherConfig) validate() error {
	if c == nil {
		return errors.New("sms config is required")
	}
	err := requireAll("sms", field{"to", c.To})
	switch c.Provider {
	case SMSProviderTwilio:
		return multierr.Append(err, c.Twilio.validate())
	case SMSProviderAWSSNS:
		return multierr.Append(err, c.SNS.validate())
	default:
		return multierr.Append(err, fmt.Errorf("sms provider %q not supported", c.Provider))
	}
}

func (c TwilioConfig) normalized() TwilioConfig {
	c.AccountSID = strings.TrimSpace(c.AccountSID)
	c.AuthToken = strings.TrimSpace(c.AuthToken)
	c.From = strings.TrimSpace(c.From)
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.Timeout <= 0 {
		c.Timeout = time.Duration(c.TimeoutSeconds) * time.Second
	}
	if c.Timeout <= 0 {
		c.Timeout = twilioDefaultTimeout
	}
	return c
}

func (c *TwilioConfig) validate() error {
	if c == nil {
		return errors.New("twilio config is required")
	}
	return requireAll("twilio",
		field{"account_sid", c.AccountSID},
		field{"auth_token", c.AuthToken},
		field{"from", c.From},
	)
}

func (c AWSSNSSMSConfig) normalized() AWSSNSSMSConfig {
	c.Region = strings.TrimSpace(c.Region)
	c.AccessKeyID = strings.TrimSpace(c.AccessKeyID)
	c.SecretAccessKey = strings.TrimSpace(c.SecretAccessKey)
	c.SenderID = strings.TrimSpace(c.SenderID)
	if c.SMSType = strings.TrimSpace(c.SMSType); c.SMSType == "" {
		c.SMSType = snsDefaultSMSType
	}
	return c
}

func (c *AWSSNSSMSConfig) validate() error {
	if c == nil {
		return errors.New("sns config is required")
	}
	return requireAll("sns",
		field{"region", c.Region},
		field{"access_key_id", c.AccessKeyID},
		field{"secret_access_key", c.SecretAccessKey},
	)
}

func (c QueueDispatcherConfig) normalized() QueueDispatcherConfig {
	c.Provider = lowerTrim(c.Provider)
	if c.AWS != nil {
		a := *c.AWS
		a.QueueURL = strings.TrimSpace(a.QueueURL)
		a.Region = strings.TrimSpace(a.Region)
		a.AccessKeyID = strings.TrimSpace(a.AccessKeyID)
		a.SecretAccessKey = strings.TrimSpace(a.SecretAccessKey)
		c.AWS = &a
	}
	if c.GCP != nil {
		g := *c.GCP
		g.ProjectID = strings.TrimSpace(g.ProjectID)
		g.Topic = strings.TrimSpace(g.Topic)
		g.CredentialsFile = strings.TrimSpace(g.CredentialsFile)
		c.GCP = &g
	}
	return c
}

func (c *QueueDispatcherConfig) validate() error {
	if c == nil {
		return errors.New("queue config is required")
	}
	switch c.Provider {
	case QueueProviderAWSSQS:
		if c.AWS == nil {
			return errors.New("sqs config is required")
		}
		return requireAll("sqs",
			field{"uri", c.AWS.QueueURL},
			field{"region", c.AWS.Region},
			field{"access_key_id", c.AWS.AccessKeyID},
			field{"secret_access_key", c.AWS.SecretAccessKey},
		)
	case QueueProviderGCP:
		if c.GCP == nil {
			return errors.New("gcp config is required")
		}
		return requireAll("gcp", field{"project_id", c.GCP.ProjectID}, field{"topic", c.GCP.Topic})
	default:
		return fmt.Errorf("queue provider %q not supported", c.Provider)
	}
}

func (c HTTPDispatcherConfig) normalized() HTTPDispatcherConfig {
	c.URL = strings.TrimSpace(c.URL)
	headers := make(map[string]string, len(c.Headers))
	for k, v := range c.Headers {
		if k, v = strings.TrimSpace(k), strings.TrimSpace(v); k != "" && v != "" {
			headers[k] = v
		}
	}
	c.Headers = nil
	if len(headers) > 0 {
		c.Headers = headers
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = httpDefaultTimeoutSeconds
	}
	return c
}

func (c *HTTPDispatcherConfig) validate() error {
	if c == nil {
		return errors.New("http config is required")
	}
	return requireAll("http", field{"url", c.URL})
}

type field struct{ name, value string }

// requireAll reports every empty field as "<section>.<name> is required".
func requireAll(section string, fields ...field) error {
	var err error
	for _, f := range fields {
		if f.value == "" {
			err = multierr.Append(err, fmt.Errorf("%s.%s is required", section, f.name))
		}
	}
	return err
}

func lowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
