package generator

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// MaxScreenshots is how many competitor screenshots a strategy run accepts; extras are dropped.
const MaxScreenshots = 10

// Image is an inline image part sent with a model request.
type Image struct {
	MIMEType string
	Data     []byte
}

// ParseDataURL decodes a browser data URL ("data:image/png;base64,...") keeping its MIME
// type. Bare base64 is accepted too, with the type sniffed from the bytes.
func ParseDataURL(s string) (Image, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Image{}, errors.New("empty image payload")
	}
	mimeType := ""
	payload := s
	if strings.HasPrefix(s, "data:") {
		header, data, ok := strings.Cut(s, ",")
		if !ok {
			return Image{}, errors.New("malformed data url")
		}
		header = strings.TrimPrefix(header, "data:")
		if !strings.HasSuffix(header, ";base64") {
			return Image{}, errors.New("data url must be base64 encoded")
		}
		mimeType = strings.TrimSuffix(header, ";base64")
		payload = data
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("decode image: %w", err)
	}
	return NewImage(raw, mimeType)
}

// NewImage builds an Image, sniffing the MIME type when none is given.
func NewImage(data []byte, mimeType string) (Image, error) {
	if len(data) == 0 {
		return Image{}, errors.New("empty image payload")
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return Image{}, fmt.Errorf("unsupported screenshot type %q", mimeType)
	}
	return Image{MIMEType: mimeType, Data: data}, nil
}

// DataURL re-encodes the image for clients that expect data URLs.
func (i Image) DataURL() string {
	return "data:" + i.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}
