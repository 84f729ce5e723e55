package objectclient

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"
)

// ExportKey builds the object key for an exported analysis:
// exports/{user}/{analysis}/{timestamp}.{ext}
func ExportKey(userID, analysisID, ext string, at time.Time) string {
	ext = strings.TrimPrefix(ext, ".")
	return path.Join("exports", userID, analysisID, fmt.Sprintf("%s.%s", at.UTC().Format("20060102T150405Z"), ext))
}

// ObjectURL is the virtual-hosted style URL of an object.
func ObjectURL(bucket, region, key string) string {
	u := url.URL{
		Scheme: "https",
		Host:   fmt.Sprintf("%s.s3.%s.amazonaws.com", bucket, region),
		Path:   "/" + key,
	}
	return u.String()
}
