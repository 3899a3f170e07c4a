package sheetstore

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2/google"
)

const (
	SHEETS         = "https://www.googleapis.com/auth/spreadsheets"
	DRIVE_FILE     = "https://www.googleapis.com/auth/drive.file"
	DRIVE_METADATA = "https://www.googleapis.com/auth/drive.metadata.readonly"
)

// authorize returns an HTTP client authorised with the service account in the
// credentials file.
func authorize(ctx context.Context, credentials string, scopes ...string) (*http.Client, error) {
	b, err := os.ReadFile(credentials)
	if err != nil {
		return nil, err
	}

	config, err := google.JWTConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("invalid service account credentials (%w)", err)
	}

	return config.Client(ctx), nil
}
