package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func envFlag(name string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// ExportUnionColumns makes exports use the union of all record columns
// instead of the columns of the first record.
//
// Set via env:
// - EXPORT_UNION_COLUMNS=true
func ExportUnionColumns() bool {
	return envFlag("EXPORT_UNION_COLUMNS")
}

// ImportNotificationsEnabled publishes a message on PUBSUB_TOPIC after every
// campaign import and merge export.
//
// Set via env:
// - IMPORT_NOTIFICATIONS=true
func ImportNotificationsEnabled() bool {
	return envFlag("IMPORT_NOTIFICATIONS")
}

// ArchiveExportsEnabled copies merge exports to GCS_BUCKET.
//
// Set via env:
// - ARCHIVE_EXPORTS=true
func ArchiveExportsEnabled() bool {
	return envFlag("ARCHIVE_EXPORTS")
}

// MergeSessionTTL is how long an idle merge wizard session is kept.
//
// Set via env:
// - MERGE_SESSION_TTL_MINUTES=60
func MergeSessionTTL() time.Duration {
	if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("MERGE_SESSION_TTL_MINUTES"))); err == nil && n > 0 {
		return time.Duration(n) * time.Minute
	}
	return time.Hour
}

// MaxUploadBytes caps a single uploaded spreadsheet.
//
// Set via env:
// - MAX_UPLOAD_MB=20
func MaxUploadBytes() int64 {
	if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("MAX_UPLOAD_MB"))); err == nil && n > 0 {
		return int64(n) << 20
	}
	return 20 << 20
}
