package util

import (
	"net/http"
	"strings"
)

// SniffMimeHTTP detects the MIME type of an image payload by its magic bytes.
func SniffMimeHTTP(b []byte) string {
	// JPEG: FF D8
	if len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8 {
		return "image/jpeg"
	}
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	if len(b) >= 8 &&
		b[0] == 0x89 && b[1] == 0x50 && b[2] == 0x4E && b[3] == 0x47 &&
		b[4] == 0x0D && b[5] == 0x0A && b[6] == 0x1A && b[7] == 0x0A {
		return "image/png"
	}
	// TIFF: II*\0 | MM\0*
	if len(b) >= 4 &&
		((b[0] == 'I' && b[1] == 'I' && b[2] == 0x2A && b[3] == 0x00) ||
			(b[0] == 'M' && b[1] == 'M' && b[2] == 0x00 && b[3] == 0x2A)) {
		return "image/tiff"
	}
	if len(b) == 0 {
		return "application/octet-stream"
	}
	// gif, webp, bmp
	return http.DetectContentType(b)
}

// IsUploadMIME reports whether mime is one of the accepted upload types.
func IsUploadMIME(mime string) bool {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/jpeg", "image/jpg", "image/png":
		return true
	}
	return false
}

func IsImageMIME(mime string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mime)), "image/")
}

// PickMIME prefers an explicit MIME type, otherwise sniffs the bytes.
func PickMIME(explicit string, data []byte) string {
	if exp := strings.TrimSpace(explicit); exp != "" && exp != "application/octet-stream" {
		return exp
	}
	return SniffMimeHTTP(data)
}

func MakeDataURL(mime, b64 string) string {
	return "data:" + mime + ";base64," + b64
}
