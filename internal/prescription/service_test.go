package prescription

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	pdfHeader = []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")
)

type failingRepo struct{ InMemoryRepository }

func (*failingRepo) Create(context.Context, Prescription) (Prescription, error) {
	return Prescription{}, errors.New("insert failed")
}

func newService(t *testing.T, repo Repository, maxBytes int64) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	storage, err := NewDiskStorage(dir)
	require.NoError(t, err)
	return NewService(repo, storage, maxBytes), dir
}

func files(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestUpload_StoresAcceptedTypes(t *testing.T) {
	repo := NewInMemoryRepository()
	svc, dir := newService(t, repo, 1<<20)

	p, err := svc.Upload(context.Background(), Upload{UserID: "u1", Filename: "scan.png", Size: int64(len(pngHeader)), Body: bytes.NewReader(pngHeader)})
	require.NoError(t, err)
	assert.Equal(t, "image/png", p.ContentType)
	assert.True(t, strings.HasSuffix(p.StoredName, ".png"))
	assert.Equal(t, int64(len(pngHeader)), p.Size)
	require.NotNil(t, p.UserID)

	stored, err := os.ReadFile(filepath.Join(dir, p.StoredName))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)
	assert.Nil(t, p.PreviewName, "a header-only png cannot be decoded")

	p, err = svc.Upload(context.Background(), Upload{Filename: "rx.pdf", Size: int64(len(pdfHeader)), Body: bytes.NewReader(pdfHeader)})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", p.ContentType)
	assert.Nil(t, p.UserID)

	all, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpload_Rejections(t *testing.T) {
	svc, dir := newService(t, NewInMemoryRepository(), 16)

	_, err := svc.Upload(context.Background(), Upload{Filename: "notes.txt", Size: 5, Body: strings.NewReader("hello")})
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = svc.Upload(context.Background(), Upload{Filename: "big.png", Size: 17, Body: bytes.NewReader(pngHeader)})
	assert.ErrorIs(t, err, ErrTooLarge)

	// declared size lies; the copy is capped and the partial file removed
	big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 64)...)
	_, err = svc.Upload(context.Background(), Upload{Filename: "big.png", Size: 1, Body: bytes.NewReader(big)})
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = svc.Upload(context.Background(), Upload{Filename: "empty.png", Body: bytes.NewReader(nil)})
	assert.ErrorIs(t, err, ErrMissingFile)

	assert.Empty(t, files(t, dir))
}

func TestUpload_RemovesFileWhenMetadataFails(t *testing.T) {
	svc, dir := newService(t, &failingRepo{}, 1<<20)

	_, err := svc.Upload(context.Background(), Upload{Filename: "scan.png", Size: int64(len(pngHeader)), Body: bytes.NewReader(pngHeader)})
	require.Error(t, err)
	assert.Empty(t, files(t, dir))
}

func encodedPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUpload_WritesPreviewForImages(t *testing.T) {
	svc, dir := newService(t, NewInMemoryRepository(), 1<<20)
	data := encodedPNG(t, 1200, 600)

	p, err := svc.Upload(context.Background(), Upload{Filename: "scan.png", Size: int64(len(data)), Body: bytes.NewReader(data)})
	require.NoError(t, err)
	require.NotNil(t, p.PreviewName)
	assert.True(t, strings.HasSuffix(*p.PreviewName, "_preview.jpg"))

	f, err := os.Open(filepath.Join(dir, *p.PreviewName))
	require.NoError(t, err)
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, previewWidth, cfg.Width)
	assert.Equal(t, previewWidth/2, cfg.Height)
}

func TestUpload_RemovesPreviewWhenMetadataFails(t *testing.T) {
	svc, dir := newService(t, &failingRepo{}, 1<<20)
	data := encodedPNG(t, 50, 50)

	_, err := svc.Upload(context.Background(), Upload{Filename: "scan.png", Size: int64(len(data)), Body: bytes.NewReader(data)})
	require.Error(t, err)
	assert.Empty(t, files(t, dir))
}

// pngWithDimensions returns a PNG whose header declares w x h pixels but
// carries no image data.
func pngWithDimensions(w, h uint32) []byte {
	chunk := func(kind string, data []byte) []byte {
		out := binary.BigEndian.AppendUint32(nil, uint32(len(data)))
		out = append(out, kind...)
		out = append(out, data...)
		return binary.BigEndian.AppendUint32(out, crc32.ChecksumIEEE(append([]byte(kind), data...)))
	}
	ihdr := binary.BigEndian.AppendUint32(nil, w)
	ihdr = binary.BigEndian.AppendUint32(ihdr, h)
	ihdr = append(ihdr, 8, 0, 0, 0, 0) // 8-bit grayscale
	out := []byte("\x89PNG\r\n\x1a\n")
	out = append(out, chunk("IHDR", ihdr)...)
	return append(out, chunk("IEND", nil)...)
}

func TestCheckPreviewBounds(t *testing.T) {
	err := checkPreviewBounds(bytes.NewReader(pngWithDimensions(15000, 15000)))
	assert.ErrorIs(t, err, errPreviewTooLarge)

	assert.NoError(t, checkPreviewBounds(bytes.NewReader(pngWithDimensions(4000, 3000))))
	assert.NoError(t, checkPreviewBounds(bytes.NewReader(encodedPNG(t, 10, 10))))
}

func TestUpload_StoresHugeImageWithoutPreview(t *testing.T) {
	svc, dir := newService(t, NewInMemoryRepository(), 1<<20)
	data := pngWithDimensions(15000, 15000)

	p, err := svc.Upload(context.Background(), Upload{Filename: "huge.png", Size: int64(len(data)), Body: bytes.NewReader(data)})
	require.NoError(t, err)
	assert.Equal(t, "image/png", p.ContentType)
	assert.Nil(t, p.PreviewName)
	assert.Equal(t, []string{p.StoredName}, files(t, dir))
}
