package ai

import (
	"encoding/base64"
	"net/http"
	"strings"
)

func dataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// sniffImageMIME reports image/png or image/jpeg, defaulting to jpeg.
func sniffImageMIME(data []byte) string {
	if ct := http.DetectContentType(data); strings.HasPrefix(ct, "image/png") {
		return "image/png"
	}
	return imageMIME
}
