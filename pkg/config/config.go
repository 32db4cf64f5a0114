// pkg/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/caarlos0/env/v11"
)

// Config holds configuration data used by the inventory report job.

// Fields:
//   - Version:         The current version of the configuration.
//   - Brand:           Brand name used in the email subject and body.
//   - Contact:         Optional contact line appended to the email body.
//   - Catalog:         Shopify Admin API settings.
//       - Store:          The shop subdomain (<store>.myshopify.com).
//       - BaseURL:        Overrides the shop URL (defaults from Store).
//       - APIVersion:     Admin API version segment, e.g. "2023-10".
//       - AccessToken:    Static Admin API access token.
//       - TokenHeader:    Header carrying the token.
//       - PageSize:       Products requested per page (max 250).
//       - MaxPages:       Stop with an error after this many pages (0 = unlimited).
//       - TimeoutSeconds: HTTP client timeout (0 = none).
//   - SMTP:            Mail submission settings.
//       - Host, Port:     Submission server (STARTTLS).
//       - Sender:         From address, also the login user.
//       - Password:       Login password or app password.
//       - Recipients:     Ordered recipient list; duplicates are kept.
//       - TimeoutSeconds: Dial timeout (0 = none).
//   - Report:          Output settings.
//       - Formats:        File formats to render ("xlsx", "csv").
//       - SheetName:      Worksheet name for xlsx output.
//       - DryRun:         Write files but skip the email.
//   - Storage:         Where report files are written.
//       - SavePath:       Directory path for saving files.
//   - Archive:         Optional copies of each written report.
//       - SFTP:           Upload to a remote directory over SFTP.
//       - S3:             Put objects into an S3 bucket.
//   - Telemetry:       Optional trace export.
//       - Endpoint:       OTLP/HTTP collector URL; empty disables tracing.
//       - SampleRatio:    Fraction of runs traced (default 1).
//       - Disabled:       Turns tracing off even when Endpoint is set.

type Config struct {
	Version string `json:"version"`
	Brand   string `json:"brand"`
	Contact string `json:"contact"`

	Catalog struct {
		Store          string `json:"store"`
		BaseURL        string `json:"baseUrl"`
		APIVersion     string `json:"apiVersion"`
		AccessToken    string `json:"accessToken"`
		TokenHeader    string `json:"tokenHeader"`
		PageSize       int    `json:"pageSize"`
		MaxPages       int    `json:"maxPages"`
		TimeoutSeconds int    `json:"timeoutSeconds"`
	} `json:"catalog"`

	SMTP struct {
		Host           string   `json:"host"`
		Port           int      `json:"port"`
		Sender         string   `json:"sender"`
		Password       string   `json:"password"`
		Recipients     []string `json:"recipients"`
		TimeoutSeconds int      `json:"timeoutSeconds"`
	} `json:"smtp"`

	Report struct {
		Formats   []string `json:"formats"`
		SheetName string   `json:"sheetName"`
		DryRun    bool     `json:"dryRun"`
	} `json:"report"`

	Storage struct {
		SavePath string `json:"savePath"`
	} `json:"storage"`

	Archive struct {
		SFTP struct {
			Active         bool   `json:"active"`
			Host           string `json:"host"`
			Port           int    `json:"port"`
			Username       string `json:"username"`
			PrivateKeyPath string `json:"privateKeyPath"`
			KnownHostsPath string `json:"knownHostsPath"`
			RemoteDir      string `json:"remoteDir"`
		} `json:"sftp"`
		S3 struct {
			Active bool   `json:"active"`
			Bucket string `json:"bucket"`
			Prefix string `json:"prefix"`
			Region string `json:"region"`
		} `json:"s3"`
	} `json:"archive"`

	Telemetry struct {
		Endpoint    string  `json:"endpoint"`
		SampleRatio float64 `json:"sampleRatio"`
		Disabled    bool    `json:"disabled"`
	} `json:"telemetry"`
}

/*
ConfigOverride represents a partial configuration used for overriding values.
All fields are pointers, so that nil indicates "no override" while non-nil
values replace existing configuration. The env tags let secrets come from
the environment instead of the config file.
*/
type ConfigOverride struct {
	Store        *string  `env:"INVENTORY_REPORT_STORE"`
	BaseURL      *string  `env:"INVENTORY_REPORT_BASE_URL"`
	AccessToken  *string  `env:"INVENTORY_REPORT_ACCESS_TOKEN"`
	SMTPHost     *string  `env:"INVENTORY_REPORT_SMTP_HOST"`
	SMTPPort     *int     `env:"INVENTORY_REPORT_SMTP_PORT"`
	SMTPSender   *string  `env:"INVENTORY_REPORT_SMTP_SENDER"`
	SMTPPassword *string  `env:"INVENTORY_REPORT_SMTP_PASSWORD"`
	Recipients   []string `env:"INVENTORY_REPORT_RECIPIENTS" envSeparator:","`
	SavePath     *string  `env:"INVENTORY_REPORT_SAVE_PATH"`
	DryRun       *bool    `env:"INVENTORY_REPORT_DRY_RUN"`
	OTelEndpoint *string  `env:"INVENTORY_REPORT_OTEL_ENDPOINT"`
	OTelEnabled  *bool    `env:"INVENTORY_REPORT_OTEL_ENABLED"`
}

const (
	defaultPageSize = 250

	// Spreadsheet applications cap worksheet names at 31 characters.
	maxSheetNameLength = 31
	sheetNameForbidden = `:\/?*[]`
)

func (cfg *Config) ApplyDefaults() {
	if cfg.Brand == "" {
		cfg.Brand = "Doggles"
	}
	if cfg.Catalog.BaseURL == "" && cfg.Catalog.Store != "" {
		cfg.Catalog.BaseURL = fmt.Sprintf("https://%s.myshopify.com", cfg.Catalog.Store)
	}
	if cfg.Catalog.APIVersion == "" {
		cfg.Catalog.APIVersion = "2023-10"
	}
	if cfg.Catalog.TokenHeader == "" {
		cfg.Catalog.TokenHeader = "X-Shopify-Access-Token"
	}
	if cfg.Catalog.PageSize <= 0 || cfg.Catalog.PageSize > defaultPageSize {
		cfg.Catalog.PageSize = defaultPageSize
	}
	if cfg.SMTP.Host == "" {
		cfg.SMTP.Host = "smtp.gmail.com"
	}
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 587
	}
	if len(cfg.Report.Formats) == 0 {
		cfg.Report.Formats = []string{"xlsx", "csv"}
	}
	if cfg.Report.SheetName == "" {
		cfg.Report.SheetName = "Inventory"
	}
	if cfg.Storage.SavePath == "" {
		cfg.Storage.SavePath = "output/"
	}
	if cfg.Archive.SFTP.Port == 0 {
		cfg.Archive.SFTP.Port = 22
	}
	if cfg.Archive.SFTP.RemoteDir == "" {
		cfg.Archive.SFTP.RemoteDir = "upload"
	}
	if cfg.Telemetry.SampleRatio <= 0 || cfg.Telemetry.SampleRatio > 1 {
		cfg.Telemetry.SampleRatio = 1
	}
}

/*
Load reads configuration data from the specified filePath, applies
environment overrides and then defaults.

Parameters:
  - filePath: The path to the JSON configuration file.

Returns:
  - A Config pointer populated from the file, environment and defaults.
  - An error if the file is missing, invalid JSON, or an env value is malformed.
*/
func Load(filePath string) (*Config, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file %s does not exist", filePath)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	override, err := LoadEnvOverride()
	if err != nil {
		return nil, err
	}
	cfg.OverrideConfig(override)
	cfg.ApplyDefaults()

	return &cfg, nil
}

// LoadEnvOverride reads the INVENTORY_REPORT_* environment variables.
func LoadEnvOverride() (ConfigOverride, error) {
	var o ConfigOverride
	if err := env.Parse(&o); err != nil {
		return ConfigOverride{}, fmt.Errorf("parse env: %w", err)
	}
	return o, nil
}

/*
OverrideConfig applies any non-nil values from overrides into cfg.
*/
func (cfg *Config) OverrideConfig(o ConfigOverride) {
	if o.Store != nil {
		cfg.Catalog.Store = *o.Store
	}
	if o.BaseURL != nil {
		cfg.Catalog.BaseURL = *o.BaseURL
	}
	if o.AccessToken != nil {
		cfg.Catalog.AccessToken = *o.AccessToken
	}
	if o.SMTPHost != nil {
		cfg.SMTP.Host = *o.SMTPHost
	}
	if o.SMTPPort != nil {
		cfg.SMTP.Port = *o.SMTPPort
	}
	if o.SMTPSender != nil {
		cfg.SMTP.Sender = *o.SMTPSender
	}
	if o.SMTPPassword != nil {
		cfg.SMTP.Password = *o.SMTPPassword
	}
	if o.Recipients != nil {
		recipients := make([]string, 0, len(o.Recipients))
		for _, r := range o.Recipients {
			if r = strings.TrimSpace(r); r != "" {
				recipients = append(recipients, r)
			}
		}
		cfg.SMTP.Recipients = recipients
	}
	if o.SavePath != nil {
		cfg.Storage.SavePath = *o.SavePath
	}
	if o.DryRun != nil {
		cfg.Report.DryRun = *o.DryRun
	}
	if o.OTelEndpoint != nil {
		cfg.Telemetry.Endpoint = *o.OTelEndpoint
	}
	if o.OTelEnabled != nil {
		cfg.Telemetry.Disabled = !*o.OTelEnabled
	}
}

// Validate reports every missing required setting at once.
func (cfg *Config) Validate() error {
	var errs []error
	if cfg.Catalog.BaseURL == "" {
		errs = append(errs, errors.New("catalog.store or catalog.baseUrl is required"))
	}
	if cfg.Catalog.AccessToken == "" {
		errs = append(errs, errors.New("catalog.accessToken is required"))
	}
	if !cfg.Report.DryRun {
		if cfg.SMTP.Host == "" || cfg.SMTP.Port <= 0 {
			errs = append(errs, errors.New("smtp.host and smtp.port are required"))
		}
		if cfg.SMTP.Sender == "" {
			errs = append(errs, errors.New("smtp.sender is required"))
		}
		if len(cfg.SMTP.Recipients) == 0 {
			errs = append(errs, errors.New("smtp.recipients must not be empty"))
		}
	}
	if err := validateSheetName(cfg.Report.SheetName); err != nil {
		errs = append(errs, err)
	}
	if cfg.Archive.SFTP.Active && (cfg.Archive.SFTP.Host == "" || cfg.Archive.SFTP.PrivateKeyPath == "") {
		errs = append(errs, errors.New("archive.sftp requires host and privateKeyPath"))
	}
	if cfg.Archive.S3.Active && cfg.Archive.S3.Bucket == "" {
		errs = append(errs, errors.New("archive.s3.bucket is required"))
	}
	return errors.Join(errs...)
}

// validateSheetName rejects worksheet names the xlsx writer cannot store.
func validateSheetName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.New("report.sheetName must not be blank")
	case utf8.RuneCountInString(name) > maxSheetNameLength:
		return fmt.Errorf("report.sheetName %q exceeds %d characters", name, maxSheetNameLength)
	case strings.ContainsAny(name, sheetNameForbidden):
		return fmt.Errorf("report.sheetName %q contains one of %s", name, sheetNameForbidden)
	case strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'"):
		return fmt.Errorf("report.sheetName %q must not start or end with an apostrophe", name)
	}
	return nil
}
