package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smallest valid PNG header is enough for sniffing
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("disk read failed") }

func TestDataURIIngestor(t *testing.T) {
	ctx := context.Background()
	ing := NewDataURIIngestor()

	t.Run("declared type is kept", func(t *testing.T) {
		ref, err := ing.Ingest(ctx, Upload{Filename: "a.jpg", ContentType: "image/jpeg", Body: strings.NewReader("jpegdata")})
		require.NoError(t, err)
		assert.Equal(t, "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString([]byte("jpegdata")), ref)
	})

	t.Run("generic type is sniffed", func(t *testing.T) {
		ref, err := ing.Ingest(ctx, Upload{Filename: "cover", ContentType: "application/octet-stream", Body: bytes.NewReader(pngBytes)})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(ref, "data:image/png;base64,"), ref)

		payload := strings.TrimPrefix(ref, "data:image/png;base64,")
		decoded, err := base64.StdEncoding.DecodeString(payload)
		require.NoError(t, err)
		assert.Equal(t, pngBytes, decoded)
	})

	t.Run("unreadable file", func(t *testing.T) {
		_, err := ing.Ingest(ctx, Upload{Filename: "x.png", Body: errReader{}})
		assert.ErrorIs(t, err, ErrUpload)
	})
}

func TestContentTypeStripsParams(t *testing.T) {
	assert.Equal(t, "image/svg+xml", contentType("image/svg+xml; charset=utf-8", nil))
	assert.Equal(t, "text/plain", contentType("", []byte("hello")))
}

type fakePutter struct {
	in  *s3.PutObjectInput
	err error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	return &s3.PutObjectOutput{}, f.err
}

func TestS3Ingestor(t *testing.T) {
	ctx := context.Background()
	fp := &fakePutter{}
	ing := NewS3Ingestor(fp, S3Options{Bucket: "velara-media", Region: "eu-west-1", Prefix: "covers"})
	ing.newKey = func() string { return "fixed" }

	ref, err := ing.Ingest(ctx, Upload{Filename: "Cover.PNG", Body: bytes.NewReader(pngBytes)})
	require.NoError(t, err)
	assert.Equal(t, "https://velara-media.s3.eu-west-1.amazonaws.com/covers/fixed.png", ref)
	assert.Equal(t, "velara-media", aws.ToString(fp.in.Bucket))
	assert.Equal(t, "covers/fixed.png", aws.ToString(fp.in.Key))
	assert.Equal(t, "image/png", aws.ToString(fp.in.ContentType))
	assert.Equal(t, int64(len(pngBytes)), aws.ToInt64(fp.in.ContentLength))

	t.Run("custom public base url", func(t *testing.T) {
		ing := NewS3Ingestor(fp, S3Options{Bucket: "b", PublicBaseURL: "https://cdn.velara.news/"})
		ing.newKey = func() string { return "k" }
		ref, err := ing.Ingest(ctx, Upload{Filename: "a.jpg", ContentType: "image/jpeg", Body: strings.NewReader("x")})
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.velara.news/k.jpg", ref)
	})

	t.Run("put failure", func(t *testing.T) {
		fp.err = errors.New("access denied")
		_, err := ing.Ingest(ctx, Upload{Filename: "a.png", Body: bytes.NewReader(pngBytes)})
		assert.ErrorIs(t, err, ErrUpload)
	})
}
