package util

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "", TruncateRunes("abc", 0))
	assert.Equal(t, "abc", TruncateRunes("abc", 5))
	assert.Equal(t, "ab", TruncateRunes("abc", 2))
	assert.Equal(t, "пр", TruncateRunes("привет", 2))

	long := strings.Repeat("é", 2500)
	got := TruncateRunes(long, 2000)
	assert.Equal(t, 2000, utf8.RuneCountInString(got))
	assert.True(t, utf8.ValidString(got))
}

func TestEllipsize(t *testing.T) {
	assert.Equal(t, "short", Ellipsize("short", 10))
	assert.Equal(t, "abc…", Ellipsize("abcdef", 3))
}

func TestSniffMimeHTTP(t *testing.T) {
	assert.Equal(t, "image/jpeg", SniffMimeHTTP([]byte{0xFF, 0xD8, 0xFF, 0xE0}))
	assert.Equal(t, "image/png", SniffMimeHTTP([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}))
	assert.Equal(t, "image/gif", SniffMimeHTTP([]byte("GIF89a......")))
	assert.Equal(t, "image/tiff", SniffMimeHTTP([]byte{'I', 'I', 0x2A, 0x00, 0x08}))
	assert.Equal(t, "application/octet-stream", SniffMimeHTTP(nil))
	assert.False(t, IsImageMIME(SniffMimeHTTP([]byte("%PDF-1.7"))))
}

func TestPickMIME(t *testing.T) {
	assert.Equal(t, "image/webp", PickMIME(" image/webp ", nil))
	assert.Equal(t, "image/jpeg", PickMIME("application/octet-stream", []byte{0xFF, 0xD8}))
	assert.True(t, IsImageMIME("Image/PNG"))
	assert.True(t, IsUploadMIME(" image/JPEG"))
	assert.True(t, IsUploadMIME("image/png"))
	assert.False(t, IsUploadMIME("image/webp"))
	assert.False(t, IsUploadMIME("image/gif"))
}
