package cfg

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"
)

// Config adds application configuration fields to the common
// cfg.Registerable and cfg.Validatable interfaces.
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	DatabaseURL           string
	APIKeys               string
	RegistryBaseURL       string
	RegistryTokenID       string
	RegistryUserID        string
	RegistryPassword      string
	ClaudeAPIKey          string
	ClaudeModel           string
	ReportTimezone        string
	ReportsBucket         string
	BrandingBucket        string
	BulkUploadsBucket     string
	DriveClientID         string
	DriveClientSecret     string
	DriveRedirectURL      string
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "PostgreSQL connection URL (empty = in-memory store)")
	fs.StringVar(&c.APIKeys, "api-keys", "", "comma-separated token:org:user triples accepted as API keys")
	fs.StringVar(&c.RegistryBaseURL, "registry-base-url", "", "verification provider base URL")
	fs.StringVar(&c.RegistryTokenID, "registry-token-id", "", "verification provider token ID")
	fs.StringVar(&c.RegistryUserID, "registry-user-id", "", "verification provider API user ID")
	fs.StringVar(&c.RegistryPassword, "registry-password", "", "verification provider API password")
	fs.StringVar(&c.ClaudeAPIKey, "claude-api-key", "", "API key for accessing the Claude LLM provider")
	fs.StringVar(&c.ClaudeModel, "claude-model", "claude-sonnet-4-20250514", "Claude model to use")
	fs.StringVar(&c.ReportTimezone, "report-timezone", "Asia/Kolkata", "IANA timezone report validity midnights are anchored to")
	fs.StringVar(&c.ReportsBucket, "reports-bucket", "", "object storage bucket for rendered report PDFs (empty = in-memory)")
	fs.StringVar(&c.BrandingBucket, "branding-bucket", "", "object storage bucket for branding assets")
	fs.StringVar(&c.BulkUploadsBucket, "bulk-uploads-bucket", "", "object storage bucket for bulk upload files")
	fs.StringVar(&c.DriveClientID, "drive-client-id", "", "OAuth2 client ID for the drive integration")
	fs.StringVar(&c.DriveClientSecret, "drive-client-secret", "", "OAuth2 client secret for the drive integration")
	fs.StringVar(&c.DriveRedirectURL, "drive-redirect-url", "", "OAuth2 redirect URL for the drive integration")
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	if c.APIKeys == "" {
		errs = append(errs, errors.New("API_KEYS is required"))
	} else if _, err := ParseAPIKeys(c.APIKeys); err != nil {
		errs = append(errs, err)
	}

	// Registry credentials are required to reach the verification provider
	if c.RegistryBaseURL == "" {
		errs = append(errs, errors.New("REGISTRY_BASE_URL is required"))
	}
	if c.RegistryTokenID == "" {
		errs = append(errs, errors.New("REGISTRY_TOKEN_ID is required"))
	}
	if c.RegistryUserID == "" {
		errs = append(errs, errors.New("REGISTRY_USER_ID is required"))
	}
	if c.RegistryPassword == "" {
		errs = append(errs, errors.New("REGISTRY_PASSWORD is required"))
	}

	// Claude API key is required for risk summaries
	if c.ClaudeAPIKey == "" {
		errs = append(errs, errors.New("CLAUDE_API_KEY is required"))
	}
	if c.ClaudeModel == "" {
		errs = append(errs, errors.New("CLAUDE_MODEL is required"))
	}

	if _, err := time.LoadLocation(c.ReportTimezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid REPORT_TIMEZONE %q: %v", c.ReportTimezone, err))
	}

	// Buckets are all-or-nothing: a partial set means a misconfigured deploy
	buckets := 0
	for _, b := range []string{c.ReportsBucket, c.BrandingBucket, c.BulkUploadsBucket} {
		if b != "" {
			buckets++
		}
	}
	if buckets != 0 && buckets != 3 {
		errs = append(errs, errors.New("REPORTS_BUCKET, BRANDING_BUCKET and BULK_UPLOADS_BUCKET must be set together"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// APIKey is one parsed entry of the API_KEYS setting.
type APIKey struct {
	Token  string
	OrgID  string
	UserID string
}

// ParseAPIKeys parses the comma-separated token:org:user triples.
func ParseAPIKeys(s string) ([]APIKey, error) {
	var keys []APIKey
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
			return nil, fmt.Errorf("invalid API_KEYS entry %q (want token:org:user)", entry)
		}
		keys = append(keys, APIKey{Token: parts[0], OrgID: parts[1], UserID: parts[2]})
	}
	if len(keys) == 0 {
		return nil, errors.New("API_KEYS contains no entries")
	}
	return keys, nil
}
