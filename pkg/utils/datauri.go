package utils

import (
	"encoding/base64"
	"errors"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var ErrInvalidDataURI = errors.New("invalid data URI")

// DataURI is a decoded data: URL. MIMEType is the sniffed type of Data, which
// wins over whatever the URI header claimed.
type DataURI struct {
	DeclaredType string
	MIMEType     string
	Extension    string
	Data         []byte
}

// ParseDataURI decodes "data:[<mediatype>][;base64],<data>".
func ParseDataURI(raw string) (*DataURI, error) {
	if !strings.HasPrefix(raw, "data:") {
		return nil, ErrInvalidDataURI
	}

	header, payload, found := strings.Cut(raw[len("data:"):], ",")
	if !found {
		return nil, ErrInvalidDataURI
	}

	params := strings.Split(header, ";")
	declared := strings.TrimSpace(params[0])
	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}

	var data []byte
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			decoded, err = base64.RawStdEncoding.DecodeString(payload)
			if err != nil {
				return nil, ErrInvalidDataURI
			}
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, ErrInvalidDataURI
		}
		data = []byte(unescaped)
	}

	if len(data) == 0 {
		return nil, ErrInvalidDataURI
	}

	detected := mimetype.Detect(data)
	return &DataURI{
		DeclaredType: declared,
		MIMEType:     detected.String(),
		Extension:    detected.Extension(),
		Data:         data,
	}, nil
}

// IsImage reports whether the sniffed content is an image.
func (d *DataURI) IsImage() bool {
	return strings.HasPrefix(d.MIMEType, "image/")
}

// ImageFormat is the subtype of an image type, e.g. "png" for "image/png".
func (d *DataURI) ImageFormat() string {
	base, _, _ := strings.Cut(d.MIMEType, ";")
	return strings.TrimPrefix(base, "image/")
}
