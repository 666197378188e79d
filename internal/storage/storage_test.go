package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/chai2010/webp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/studio-scheduler/internal/config"
	"github.com/BruksfildServices01/studio-scheduler/internal/logging"
)

type putCall struct {
	bucket      string
	key         string
	contentType string
	body        []byte
}

type mockS3 struct {
	calls []putCall
	err   error
}

func (m *mockS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	body, _ := io.ReadAll(in.Body)
	m.calls = append(m.calls, putCall{
		bucket:      *in.Bucket,
		key:         *in.Key,
		contentType: *in.ContentType,
		body:        body,
	})
	return &s3.PutObjectOutput{}, nil
}

func testConfig() *config.Config {
	return &config.Config{S3Bucket: "studio", S3Region: "sa-east-1", S3Endpoint: "http://minio:9000/"}
}

func pngFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestEncodeAvatar(t *testing.T) {
	out, err := EncodeAvatar(pngFixture(t, 400, 300))
	require.NoError(t, err)

	img, err := webp.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, AvatarSize, img.Bounds().Dx())
	assert.Equal(t, AvatarSize, img.Bounds().Dy())
}

func TestEncodeAvatarRejectsGarbage(t *testing.T) {
	_, err := EncodeAvatar([]byte("not an image"))
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = EncodeAvatar(make([]byte, MaxAvatarSize+1))
	assert.ErrorIs(t, err, ErrImageTooBig)
}

func TestSquareCenter(t *testing.T) {
	assert.Equal(t, image.Rect(50, 0, 350, 300), squareCenter(image.Rect(0, 0, 400, 300)))
	assert.Equal(t, image.Rect(0, 10, 100, 110), squareCenter(image.Rect(0, 0, 100, 120)))
}

func TestUploadAvatar(t *testing.T) {
	mock := &mockS3{}
	store := NewStore(mock, testConfig(), logging.Discard())

	url, err := store.UploadAvatar(context.Background(), 3, 7, pngFixture(t, 64, 64))
	require.NoError(t, err)

	require.Len(t, mock.calls, 1)
	call := mock.calls[0]
	assert.Equal(t, "studio", call.bucket)
	assert.Equal(t, "image/webp", call.contentType)
	assert.True(t, strings.HasPrefix(call.key, "avatars/3/7/"))
	assert.True(t, strings.HasSuffix(call.key, ".webp"))
	assert.Equal(t, "http://minio:9000/studio/"+call.key, url)
}

func TestArchiveReceipt(t *testing.T) {
	mock := &mockS3{}
	store := NewStore(mock, testConfig(), logging.Discard())

	r := Receipt{
		StudioID:   3,
		CommandID:  42,
		Gross:      decimal.NewFromInt(200),
		Fee:        decimal.RequireFromString("3.60"),
		Net:        decimal.RequireFromString("196.40"),
		FinishedAt: time.Date(2026, 10, 14, 18, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.ArchiveReceipt(context.Background(), r))

	require.Len(t, mock.calls, 1)
	assert.Equal(t, "receipts/v1/3/2026/10/command-42.json", mock.calls[0].key)

	var decoded Receipt
	require.NoError(t, json.Unmarshal(mock.calls[0].body, &decoded))
	assert.Equal(t, uint(42), decoded.CommandID)
	assert.True(t, decoded.Net.Equal(r.Net))
}

func TestDisabledStore(t *testing.T) {
	store := NewStore(nil, &config.Config{}, nil)
	assert.False(t, store.Enabled())

	assert.NoError(t, store.ArchiveReceipt(context.Background(), Receipt{}))

	_, err := store.UploadAvatar(context.Background(), 1, 1, nil)
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestPutWrapsError(t *testing.T) {
	store := NewStore(&mockS3{err: errors.New("boom")}, testConfig(), nil)
	_, err := store.Put(context.Background(), "k", "text/plain", []byte("x"))
	assert.ErrorContains(t, err, "boom")
}

func TestAWSURL(t *testing.T) {
	store := NewStore(&mockS3{}, &config.Config{S3Bucket: "b", S3Region: "sa-east-1"}, nil)
	assert.Equal(t, "https://b.s3.sa-east-1.amazonaws.com/x.webp", store.URL("x.webp"))
}
