package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

const (
	AvatarSize    = 256
	MaxAvatarSize = 5 << 20
)

var (
	ErrDisabled     = errors.New("storage disabled")
	ErrInvalidImage = errors.New("invalid image")
	ErrImageTooBig  = errors.New("image too big")
)

// EncodeAvatar corta o centro em quadrado, reduz para AvatarSize e devolve WebP.
func EncodeAvatar(raw []byte) ([]byte, error) {
	if len(raw) > MaxAvatarSize {
		return nil, ErrImageTooBig
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, ErrInvalidImage
	}

	crop := squareCenter(src.Bounds())
	dst := image.NewRGBA(image.Rect(0, 0, AvatarSize, AvatarSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Over, nil)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, dst, &webp.Options{Quality: 82}); err != nil {
		return nil, fmt.Errorf("storage: encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

func squareCenter(b image.Rectangle) image.Rectangle {
	w, h := b.Dx(), b.Dy()
	side := w
	if h < side {
		side = h
	}
	x0 := b.Min.X + (w-side)/2
	y0 := b.Min.Y + (h-side)/2
	return image.Rect(x0, y0, x0+side, y0+side)
}

// UploadAvatar processa e grava o avatar do profissional.
func (s *Store) UploadAvatar(ctx context.Context, studioID, professionalID uint, raw []byte) (string, error) {
	if !s.Enabled() {
		return "", ErrDisabled
	}

	encoded, err := EncodeAvatar(raw)
	if err != nil {
		return "", err
	}

	// nome novo a cada upload para não brigar com cache de CDN
	key := fmt.Sprintf("avatars/%d/%d/%s.webp", studioID, professionalID, uuid.NewString())
	return s.Put(ctx, key, "image/webp", encoded)
}
