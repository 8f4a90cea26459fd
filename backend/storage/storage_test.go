package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLessonImagePath(t *testing.T) {
	course := uuid.MustParse("7b0e7c7a-0000-4000-8000-000000000001")
	now := time.UnixMilli(1700000000123)

	assert.Equal(t, course.String()+"/1700000000123.png", LessonImagePath(course, "Diagram.PNG", now))
	assert.Equal(t, course.String()+"/1700000000123.jpg", LessonImagePath(course, "photo.final.jpg", now))
	assert.Equal(t, course.String()+"/1700000000123.bin", LessonImagePath(course, "noext", now))
}

func TestSupabaseUpload(t *testing.T) {
	var (
		gotMethod, gotPath, gotAuth, gotType, gotUpsert string
		gotBody                                         []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.EscapedPath()
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotUpsert = r.Header.Get("x-upsert")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"Key":"course-images/c/1.png"}`))
	}))
	defer srv.Close()

	store := NewSupabaseStore(srv.URL+"/", "service-key", "course-images")
	url, err := store.Upload(context.Background(), "c/1 a.png", "image/png", []byte("PNGDATA"))
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/storage/v1/object/course-images/c/1%20a.png", gotPath)
	assert.Equal(t, "Bearer service-key", gotAuth)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, "true", gotUpsert)
	assert.Equal(t, []byte("PNGDATA"), gotBody)
	assert.Equal(t, srv.URL+"/storage/v1/object/public/course-images/c/1%20a.png", url)
}

func TestSupabaseUploadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"bucket not found"}`))
	}))
	defer srv.Close()

	store := NewSupabaseStore(srv.URL, "k", "missing")
	_, err := store.Upload(context.Background(), "x.png", "image/png", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
	assert.Contains(t, err.Error(), "bucket not found")
}

func TestSupabaseDelete(t *testing.T) {
	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, NewSupabaseStore(srv.URL, "k", "b").Delete(context.Background(), "a/b.png"))
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestUnconfigured(t *testing.T) {
	_, err := Unconfigured{}.Upload(context.Background(), "a", "image/png", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, ok := ObjectPath(Unconfigured{}, "https://example.com/a.png")
	assert.False(t, ok)
}

func TestObjectPath(t *testing.T) {
	store := NewSupabaseStore("https://proj.supabase.co/", "k", "course-images")
	course := uuid.New()

	p, ok := ObjectPath(store, store.PublicURL(course.String()+"/my image.png"))
	require.True(t, ok)
	assert.Equal(t, course.String()+"/my image.png", p)

	for _, u := range []string{
		"https://elsewhere.test/storage/v1/object/public/course-images/a.png",
		"https://proj.supabase.co/storage/v1/object/public/other-bucket/a.png",
		store.PublicURL(""),
	} {
		_, ok := ObjectPath(store, u)
		assert.False(t, ok, u)
	}
}

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPrepareImageDownscales(t *testing.T) {
	out, ct, err := PrepareImage(pngOf(t, 400, 200), 100)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	cfg, err := png.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestPrepareImageKeepsSmallImages(t *testing.T) {
	in := pngOf(t, 80, 40)
	out, _, err := PrepareImage(in, 100)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestPrepareImageRejectsNonImages(t *testing.T) {
	_, _, err := PrepareImage([]byte("%PDF-1.4 not an image"), 100)
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestPrepareImagePassesThroughGIF(t *testing.T) {
	gif := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")
	out, ct, err := PrepareImage(gif, 100)
	require.NoError(t, err)
	assert.Equal(t, "image/gif", ct)
	assert.Equal(t, gif, out)
}
