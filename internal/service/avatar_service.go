package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

// ErrInvalidImage is returned when an upload cannot be decoded as an image
var ErrInvalidImage = errors.New("file is not a supported image")

const (
	AvatarSize        = 512
	avatarJPEGQuality = 85
)

// AvatarProcessor normalises uploaded avatars: orientation fixed, scaled down to
// fit AvatarSize x AvatarSize and re-encoded as JPEG.
type AvatarProcessor struct {
	size int
}

func NewAvatarProcessor() *AvatarProcessor {
	return &AvatarProcessor{size: AvatarSize}
}

// Process decodes r and returns the normalised JPEG bytes
func (p *AvatarProcessor) Process(r io.Reader) (*bytes.Buffer, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > p.size || bounds.Dy() > p.size {
		img = imaging.Fit(img, p.size, p.size, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(avatarJPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}
	return buf, nil
}
