package gemini

import (
	"encoding/base64"
	"regexp"
	"strings"

	"google.golang.org/genai"

	"github.com/cricgurufans-star/AI-Video-Maker/internal/failure"
)

const defaultImageMIME = "image/png"

var dataURLRegex = regexp.MustCompile(`^data:([^;,]+)(;[^,]*)?,`)

// referenceImage decodes a data URL into raw image bytes for the service.
// An empty value means a prompt-only job.
func referenceImage(dataURL string) (*genai.Image, error) {
	dataURL = strings.TrimSpace(dataURL)
	if dataURL == "" {
		return nil, nil
	}

	mime := defaultImageMIME
	if matches := dataURLRegex.FindStringSubmatch(dataURL); len(matches) >= 2 {
		mime = strings.TrimSpace(matches[1])
	}

	payload := stripDataURLPrefix(dataURL)
	if payload == "" {
		return nil, failure.Validation("reference image is empty", nil)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(payload)
	}
	if err != nil {
		return nil, failure.Validation("reference image is not valid base64", err)
	}
	if !strings.HasPrefix(mime, "image/") {
		return nil, failure.Validation("reference image has unsupported type "+mime, nil)
	}

	return &genai.Image{ImageBytes: raw, MIMEType: mime}, nil
}

func stripDataURLPrefix(value string) string {
	if idx := strings.IndexByte(value, ','); idx >= 0 {
		return strings.TrimSpace(value[idx+1:])
	}
	return strings.TrimSpace(value)
}

// DataURL encodes raw bytes the way browser uploads arrive.
func DataURL(mime string, data []byte) string {
	if strings.TrimSpace(mime) == "" {
		mime = defaultImageMIME
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
