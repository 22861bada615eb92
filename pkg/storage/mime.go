package storage

import (
	"bufio"
	"io"
	"net/http"
	"strings"
)

// MIMEOctetStream is reported when content cannot be identified.
const MIMEOctetStream = "application/octet-stream"

const sniffLen = 512

var extensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/bmp":       ".bmp",
	"image/x-icon":    ".ico",
	"application/pdf": ".pdf",
	"application/zip": ".zip",
	"application/rtf": ".rtf",
	"text/plain":      ".txt",
	"text/csv":        ".csv",
	"audio/mpeg":      ".mp3",
	"audio/wave":      ".wav",
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
}

// Documents lists the content types accepted by DocumentsOnly.
var Documents = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/rtf",
	"text/plain",
	"text/csv",
}

// ExtFromMIME returns the preferred extension, or "" when unknown.
func ExtFromMIME(mimeType string) string {
	return extensions[normalizeMIME(mimeType)]
}

// sniff detects the content type from the first bytes of r and returns a
// reader that still yields the whole content.
func sniff(r io.Reader) (string, io.Reader) {
	br := bufio.NewReaderSize(r, sniffLen)
	head, _ := br.Peek(sniffLen)
	if len(head) == 0 {
		return MIMEOctetStream, br
	}
	return http.DetectContentType(head), br
}

func normalizeMIME(mimeType string) string {
	mimeType, _, _ = strings.Cut(mimeType, ";")
	return strings.TrimSpace(strings.ToLower(mimeType))
}

// matchesMIME supports exact types and "type/*" wildcards.
func matchesMIME(mimeType string, allowed []string) bool {
	mimeType = normalizeMIME(mimeType)
	for _, p := range allowed {
		p = normalizeMIME(p)
		if p == mimeType || p == "*/*" {
			return true
		}
		if prefix, ok := strings.CutSuffix(p, "/*"); ok && strings.HasPrefix(mimeType, prefix+"/") {
			return true
		}
	}
	return false
}
