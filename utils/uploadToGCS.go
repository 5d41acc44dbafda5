package utils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// ErrStorageDisabled is returned when GCS_BUCKET is not configured.
var ErrStorageDisabled = errors.New("GCS_BUCKET is required")

// getGoogleClient initializes a Google Cloud Storage client
func getGoogleClient(ctx context.Context) (*storage.Client, error) {
	// Prefer ADC. Set GCS_CREDENTIALS_JSON to provide explicit credentials.
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		return storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	}
	return storage.NewClient(ctx)
}

// ExportObjectKey places exports under reports/<report>/<yyyy>/<mm>/.
func ExportObjectKey(report string, at time.Time, ext string) string {
	return fmt.Sprintf("reports/%s/%04d/%02d/%s_%s.%s",
		report, at.Year(), int(at.Month()), report, at.Format("20060102_150405"), ext)
}

// UploadToGCS writes data to objectName in GCS_BUCKET and returns its access URL.
func UploadToGCS(ctx context.Context, objectName string, contentType string, data []byte) (string, error) {
	bucketName := strings.TrimSpace(os.Getenv("GCS_BUCKET"))
	if bucketName == "" {
		return "", ErrStorageDisabled
	}

	client, err := getGoogleClient(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	wc := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", err
	}

	return BuildObjectAccessURL(objectName), nil
}
