package utils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// getGoogleClient initializes a Google Cloud Storage client
func getGoogleClient(ctx context.Context) (*storage.Client, error) {
	// Prefer ADC. GCS_CREDENTIALS_JSON overrides it for local runs.
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		return storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	}
	return storage.NewClient(ctx)
}

func exportBucket() (string, error) {
	bucketName := strings.TrimSpace(os.Getenv("GCS_BUCKET"))
	if bucketName == "" {
		return "", errors.New("GCS_BUCKET is required")
	}
	return bucketName, nil
}

// ArchiveEnabled reports whether exports can be copied to cloud storage.
func ArchiveEnabled() bool {
	return strings.TrimSpace(os.Getenv("GCS_BUCKET")) != ""
}

// ExportObjectKey builds exports/<owner>/<yyyy-mm-dd>/<uuid>-<name>.
func ExportObjectKey(ownerId string, fileName string, now time.Time) string {
	owner := strings.TrimSpace(ownerId)
	if owner == "" {
		owner = "anonymous"
	}
	return path.Join("exports", owner, now.UTC().Format("2006-01-02"), uuid.NewString()+"-"+path.Base(fileName))
}

func UploadBytesToGCS(ctx context.Context, objectName string, data []byte, contentType string) error {
	bucketName, err := exportBucket()
	if err != nil {
		return err
	}
	client, err := getGoogleClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	wc := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return fmt.Errorf("failed to upload bytes to Google Cloud Storage: %v", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %v", err)
	}
	return nil
}

// DeleteFromGCS removes an archived object. Missing objects are not an error.
func DeleteFromGCS(ctx context.Context, objectName string) error {
	bucketName, err := exportBucket()
	if err != nil {
		return err
	}
	client, err := getGoogleClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	err = client.Bucket(bucketName).Object(objectName).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}

// ArchivedExport describes an export copied to cloud storage.
type ArchivedExport struct {
	ObjectKey   string    `json:"objectKey"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// ArchiveExport uploads an export and returns a signed download link.
func ArchiveExport(ctx context.Context, ownerId, fileName, contentType string, data []byte) (*ArchivedExport, error) {
	key := ExportObjectKey(ownerId, fileName, time.Now())
	if err := UploadBytesToGCS(ctx, key, data, contentType); err != nil {
		return nil, err
	}
	signed, err := SignDownload(ctx, key, fileName, 15*time.Minute)
	if err != nil {
		return nil, err
	}
	return &ArchivedExport{ObjectKey: key, DownloadURL: signed.URL, ExpiresAt: signed.ExpiresAt}, nil
}
