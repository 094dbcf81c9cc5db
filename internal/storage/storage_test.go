package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSketchKey_Unique(t *testing.T) {
	a := SketchKey(42, ".PDF")
	b := SketchKey(42, "pdf")

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "sketches/42/"))
	assert.True(t, strings.HasSuffix(a, ".pdf"))
	assert.NoError(t, validKey(a))
}

func TestValidKey_RejectsTraversal(t *testing.T) {
	for _, key := range []string{"", "/etc/passwd", "../x.pdf", "a/../../b", "a//b", `a\b`} {
		assert.Error(t, validKey(key), key)
	}
}

func TestLocalStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewLocalStore(root)
	require.NoError(t, err)

	key := "sketches/1/plan.pdf"
	require.NoError(t, store.Put(ctx, key, strings.NewReader("%PDF-1.4 data"), 13, "application/pdf"))

	rc, err := store.Open(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 data", string(data))

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Join(root, "sketches", "1"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Open(ctx, key)
	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.ErrorIs(t, store.Delete(ctx, key), ErrObjectNotFound)
}

type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store_UsesPrefix(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{objects: map[string][]byte{}}
	store := NewS3StoreWithClient(fake, "bucket", "accidentes")

	require.NoError(t, store.Put(ctx, "sketches/3/a.pdf", strings.NewReader("pdf"), 3, "application/pdf"))
	assert.Contains(t, fake.objects, "bucket/accidentes/sketches/3/a.pdf")

	rc, err := store.Open(ctx, "sketches/3/a.pdf")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "pdf", string(data))

	require.NoError(t, store.Delete(ctx, "sketches/3/a.pdf"))
	_, err = store.Open(ctx, "sketches/3/a.pdf")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}
