package utils

import (
	"net/url"
	"os"
	"strings"
)

const objectKeyPlaceholder = "{objectKey}"

// BuildObjectAccessURL is the download URL of an exported object.
//
// STORAGE_ACCESS_BASE_URL wins when set: its "{objectKey}" placeholder is replaced
// (query-escaped inside a query string), otherwise the key is joined to its path.
// Without it the public URL of GCS_BUCKET on GCS_URL (default storage.googleapis.com) is used.
func BuildObjectAccessURL(objectKey string) string {
	if base := strings.TrimSpace(os.Getenv("STORAGE_ACCESS_BASE_URL")); base != "" {
		if i := strings.Index(base, objectKeyPlaceholder); i >= 0 {
			key := objectKey
			if strings.Contains(base[:i], "?") {
				key = url.QueryEscape(objectKey)
			}
			return strings.ReplaceAll(base, objectKeyPlaceholder, key)
		}
		if joined, err := url.JoinPath(base, objectKey); err == nil {
			return joined
		}
	}

	bucket := strings.TrimSpace(os.Getenv("GCS_BUCKET"))
	if bucket == "" {
		return objectKey
	}
	host := strings.TrimSpace(os.Getenv("GCS_URL"))
	if host == "" {
		host = "storage.googleapis.com"
	}
	u := url.URL{Scheme: "https", Host: host, Path: "/" + bucket + "/" + objectKey}
	return u.String()
}
