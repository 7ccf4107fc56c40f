package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	input    *s3manager.UploadInput
	body     string
	location string
	err      error
}

func (f *fakeUploader) UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	if f.err != nil {
		return nil, f.err
	}

	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.input = input
	f.body = string(body)

	return &s3manager.UploadOutput{Location: f.location}, nil
}

func TestSaveFile(t *testing.T) {
	up := &fakeUploader{location: "https://media.s3.eu-west-1.amazonaws.com/avatars/x.png"}
	s := &S3Storage{uploader: up, bucket: "media", region: "eu-west-1"}

	file, err := s.SaveFile(context.Background(), strings.NewReader("img"), "image/png", "Me.PNG", 3)
	require.NoError(t, err)

	assert.Equal(t, up.location, file.SecureUrl)
	assert.Equal(t, "media", aws.StringValue(up.input.Bucket))
	assert.Equal(t, "image/png", aws.StringValue(up.input.ContentType))
	assert.Equal(t, "img", up.body)

	key := aws.StringValue(up.input.Key)
	assert.True(t, strings.HasPrefix(key, "avatars/"), key)
	assert.True(t, strings.HasSuffix(key, ".png"), key)
}

func TestSaveFileBuildsUrlWithoutLocation(t *testing.T) {
	up := &fakeUploader{}
	s := &S3Storage{uploader: up, bucket: "media", region: "eu-west-1"}

	file, err := s.SaveFile(context.Background(), strings.NewReader("img"), "image/jpeg", "me.jpg", 3)
	require.NoError(t, err)

	assert.Equal(t, "https://media.s3.eu-west-1.amazonaws.com/"+aws.StringValue(up.input.Key), file.SecureUrl)
}

func TestSaveFileUploadError(t *testing.T) {
	s := &S3Storage{uploader: &fakeUploader{err: errors.New("access denied")}, bucket: "media"}

	_, err := s.SaveFile(context.Background(), strings.NewReader("img"), "image/png", "me.png", 3)
	assert.ErrorContains(t, err, "access denied")
}
