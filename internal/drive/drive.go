// Package drive integrates with a third-party drive for report exports.
// Organizations connect via OAuth2; exports land in a fixed named folder.
package drive

import (
	"context"
	"errors"
	"time"
)

// FolderName is the drive folder reports are exported into, created if absent.
const FolderName = "Vendor Compliance Reports"

// ErrNotConnected is returned when an org attempts a drive export without a
// connected integration.
var ErrNotConnected = errors.New("drive integration not connected")

// Integration is an org's drive connection record.
type Integration struct {
	OrgID        string    `json:"org_id"`
	Connected    bool      `json:"connected"`
	Email        string    `json:"email,omitempty"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	ConnectedAt  time.Time `json:"connected_at,omitempty"`
}

// Credential carries the tokens needed for an upload on behalf of an org.
type Credential struct {
	AccessToken  string
	RefreshToken string
}

// IntegrationStore persists per-org drive connections.
type IntegrationStore interface {
	Integration(ctx context.Context, orgID string) (*Integration, bool, error)
	SaveIntegration(ctx context.Context, in *Integration) error
}

// UploadResult identifies an uploaded drive file.
type UploadResult struct {
	FileID string `json:"file_id"`
	Link   string `json:"link"`
}

// Uploader puts a file into the fixed export folder on the user's drive.
type Uploader interface {
	Upload(ctx context.Context, cred Credential, name string, content []byte, contentType string) (*UploadResult, error)
}

// TokenExchange is the outcome of an OAuth2 code exchange.
type TokenExchange struct {
	AccessToken  string
	RefreshToken string
	Email        string
	Expiry       time.Time
}

// Connector runs the OAuth2 authorization flow.
type Connector interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*TokenExchange, error)
}
