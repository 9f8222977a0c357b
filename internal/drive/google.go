package drive

import (
	"bytes"
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gdrive "google.golang.org/api/drive/v3"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

// Google implements Connector and Uploader against Google Drive.
type Google struct {
	oauth *oauth2.Config
}

// NewGoogle creates a Google Drive client with the given OAuth2 app
// credentials. Scopes are limited to files this app creates plus the
// account email.
func NewGoogle(clientID, clientSecret, redirectURL string) *Google {
	return &Google{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				gdrive.DriveFileScope,
				"https://www.googleapis.com/auth/userinfo.email",
			},
			Endpoint: google.Endpoint,
		},
	}
}

// AuthURL returns the authorization URL for the org to visit. state should be
// an opaque CSRF token bound to the org.
func (g *Google) AuthURL(state string) string {
	return g.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange trades an authorization code for tokens and resolves the
// connected account's email.
func (g *Google) Exchange(ctx context.Context, code string) (*TokenExchange, error) {
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("drive: code exchange: %w", err)
	}

	svc, err := goauth2.NewService(ctx, option.WithTokenSource(g.oauth.TokenSource(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("drive: userinfo service: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("drive: userinfo: %w", err)
	}

	return &TokenExchange{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Email:        info.Email,
		Expiry:       tok.Expiry,
	}, nil
}

// Upload puts content into the fixed export folder, creating the folder on
// first use.
func (g *Google) Upload(ctx context.Context, cred Credential, name string, content []byte, contentType string) (*UploadResult, error) {
	tok := &oauth2.Token{AccessToken: cred.AccessToken, RefreshToken: cred.RefreshToken}
	svc, err := gdrive.NewService(ctx, option.WithTokenSource(g.oauth.TokenSource(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("drive: service: %w", err)
	}

	folderID, err := g.findOrCreateFolder(ctx, svc)
	if err != nil {
		return nil, err
	}

	f, err := svc.Files.Create(&gdrive.File{
		Name:    name,
		Parents: []string{folderID},
	}).
		Media(bytes.NewReader(content)).
		Fields("id", "name", "webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("drive: upload %s: %w", name, err)
	}

	return &UploadResult{FileID: f.Id, Link: f.WebViewLink}, nil
}

func (g *Google) findOrCreateFolder(ctx context.Context, svc *gdrive.Service) (string, error) {
	q := fmt.Sprintf("name='%s' and mimeType='%s' and trashed=false", FolderName, folderMimeType)
	list, err := svc.Files.List().Q(q).Spaces("drive").Fields("files(id, name)").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("drive: list folders: %w", err)
	}
	if len(list.Files) > 0 {
		return list.Files[0].Id, nil
	}

	folder, err := svc.Files.Create(&gdrive.File{
		Name:     FolderName,
		MimeType: folderMimeType,
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("drive: create folder: %w", err)
	}
	return folder.Id, nil
}
