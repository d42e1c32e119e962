package studio

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"mockup/internal/domain"
)

// NewSourceImage validates uploaded bytes and builds the source image. A
// missing or generic declared type is replaced by the sniffed one; anything
// outside the image family is rejected with domain.ErrNotAnImage.
func NewSourceImage(data []byte, declaredType, name string) (domain.SourceImage, error) {
	if len(data) == 0 {
		return domain.SourceImage{}, domain.ErrNotAnImage
	}
	mediaType := baseMediaType(declaredType)
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = baseMediaType(mimetype.Detect(data).String())
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return domain.SourceImage{}, domain.ErrNotAnImage
	}
	return domain.SourceImage{
		Data:     append([]byte(nil), data...),
		MIMEType: mediaType,
		Name:     strings.TrimSpace(name),
	}, nil
}

func baseMediaType(v string) string {
	if i := strings.IndexByte(v, ';'); i >= 0 {
		v = v[:i]
	}
	return strings.ToLower(strings.TrimSpace(v))
}
