package services

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1989Cristianq/modelodatos/internal/config"
	"github.com/1989Cristianq/modelodatos/internal/logging"
	"github.com/1989Cristianq/modelodatos/internal/storage"
)

func pdfUpload(body string) Upload {
	return Upload{
		FileName:    "croquis.pdf",
		ContentType: "application/pdf",
		Size:        int64(len(body)),
		Body:        bytes.NewBufferString(body),
	}
}

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

func TestAttachSketch_ReplaceAndRemove(t *testing.T) {
	f := newFixture(t)
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	svc := NewAttachmentService(f.db, store, 1024, nil, logging.Discard())
	ctx := context.Background()

	created := f.createAccident(t, f.urbanAccident("SK-1"))

	first, err := svc.AttachSketch(ctx, f.fieldAgent, created.AccidentID, pdfUpload("%PDF-1 first"))
	require.NoError(t, err)
	require.NotEmpty(t, first.SketchKey)

	rc, name, err := svc.OpenSketch(ctx, created.AccidentID)
	require.NoError(t, err)
	assert.Equal(t, "croquis_SK-1.pdf", name)
	assert.Equal(t, "%PDF-1 first", readAll(t, rc))

	second, err := svc.AttachSketch(ctx, f.supervisor, created.AccidentID, pdfUpload("%PDF-1 second"))
	require.NoError(t, err)
	assert.NotEqual(t, first.SketchKey, second.SketchKey)

	_, err = store.Open(ctx, first.SketchKey)
	require.ErrorIs(t, err, storage.ErrObjectNotFound, "replaced sketch is removed")

	rc, _, err = svc.OpenSketch(ctx, created.AccidentID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1 second", readAll(t, rc))

	require.NoError(t, svc.RemoveSketch(ctx, f.fieldAgent, created.AccidentID))
	_, err = store.Open(ctx, second.SketchKey)
	require.ErrorIs(t, err, storage.ErrObjectNotFound)

	_, _, err = svc.OpenSketch(ctx, created.AccidentID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, svc.RemoveSketch(ctx, f.fieldAgent, created.AccidentID), ErrNotFound)
}

func TestAttachSketch_Rejections(t *testing.T) {
	f := newFixture(t)
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	svc := NewAttachmentService(f.db, store, 8, nil, logging.Discard())
	ctx := context.Background()

	created := f.createAccident(t, f.urbanAccident("SK-2"))

	tests := []struct {
		name   string
		upload Upload
	}{
		{"wrong extension", Upload{FileName: "croquis.png", ContentType: "image/png", Size: 3, Body: bytes.NewBufferString("png")}},
		{"wrong content type", Upload{FileName: "croquis.pdf", ContentType: "text/plain", Size: 3, Body: bytes.NewBufferString("pdf")}},
		{"empty", Upload{FileName: "croquis.pdf", ContentType: "application/pdf", Size: 0, Body: bytes.NewBuffer(nil)}},
		{"too large", pdfUpload("0123456789")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AttachSketch(ctx, f.fieldAgent, created.AccidentID, tt.upload)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, "sketch")
		})
	}

	_, err = svc.AttachSketch(ctx, f.otherAgent, created.AccidentID, pdfUpload("%PDF"))
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.AttachSketch(ctx, f.admin, 9999, pdfUpload("%PDF"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAccident_RemovesSketch(t *testing.T) {
	f := newFixture(t)
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	attachments := NewAttachmentService(f.db, store, 1024, nil, logging.Discard())
	accidents := NewAccidentService(f.db, store, config.RecordsConfig{}, nil, logging.Discard())
	ctx := context.Background()

	created := f.createAccident(t, f.urbanAccident("SK-3"))
	a, err := attachments.AttachSketch(ctx, f.fieldAgent, created.AccidentID, pdfUpload("%PDF"))
	require.NoError(t, err)

	require.NoError(t, accidents.Delete(ctx, f.admin, created.AccidentID))

	_, err = store.Open(ctx, a.SketchKey)
	require.ErrorIs(t, err, storage.ErrObjectNotFound)
}
