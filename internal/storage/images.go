// Package storage guarda las imágenes de productos en un bucket de gocloud
// (fileblob en disco por defecto, cualquier driver por URL).
package storage

import (
	"context"
	"errors"
	"image"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrCorruptImage      = errors.New("cannot decode image")
	ErrImageNotFound     = errors.New("image not found")
)

var allowedExt = map[string]imaging.Format{
	".jpg":  imaging.JPEG,
	".jpeg": imaging.JPEG,
	".png":  imaging.PNG,
}

type BlobImageStore struct {
	bucket  *blob.Bucket
	maxSide int
}

// OpenBlobImageStore abre el bucket indicado por url (file://, mem://, s3://, gs://...).
func OpenBlobImageStore(ctx context.Context, url string, maxSide int) (*BlobImageStore, error) {
	b, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "opening image bucket %q", url)
	}
	return NewBlobImageStore(b, maxSide), nil
}

func NewBlobImageStore(b *blob.Bucket, maxSide int) *BlobImageStore {
	return &BlobImageStore{bucket: b, maxSide: maxSide}
}

func (s *BlobImageStore) Close() error {
	return s.bucket.Close()
}

// Save valida la extensión, corrige la orientación EXIF, achica la imagen para
// que entre en maxSide x maxSide y la guarda. Devuelve la clave generada.
func (s *BlobImageStore) Save(ctx context.Context, filename string, src io.Reader) (string, error) {
	base := filepath.Base(filename)
	ext := strings.ToLower(filepath.Ext(base))
	format, ok := allowedExt[ext]
	if !ok {
		return "", ErrUnsupportedFormat
	}

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", pkgerrors.WithMessage(ErrCorruptImage, err.Error())
	}
	img = s.fit(img)

	key := newKey(strings.TrimSuffix(base, filepath.Ext(base)), ext)

	w, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: mime.TypeByExtension(ext)})
	if err != nil {
		return "", pkgerrors.Wrap(err, "opening image writer")
	}
	if err := imaging.Encode(w, img, format); err != nil {
		_ = w.Close()
		return "", pkgerrors.Wrap(err, "encoding image")
	}
	if err := w.Close(); err != nil {
		return "", pkgerrors.Wrap(err, "writing image")
	}
	return key, nil
}

// Delete ignora imágenes que ya no existen.
func (s *BlobImageStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	err := s.bucket.Delete(ctx, key)
	if err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return pkgerrors.Wrapf(err, "deleting image %s", key)
	}
	return nil
}

// Open devuelve un lector de la imagen y su content type.
func (s *BlobImageStore) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if key == "" || key != filepath.Base(key) {
		return nil, "", ErrImageNotFound
	}
	r, err := s.bucket.NewReader(ctx, key, nil)
	if gcerrors.Code(err) == gcerrors.NotFound {
		return nil, "", ErrImageNotFound
	}
	if err != nil {
		return nil, "", pkgerrors.Wrapf(err, "reading image %s", key)
	}
	return r, r.ContentType(), nil
}

// fit nunca agranda: imaging.Fit devuelve una copia si ya entra.
func (s *BlobImageStore) fit(img image.Image) image.Image {
	return imaging.Fit(img, s.maxSide, s.maxSide, imaging.Lanczos)
}

// newKey: 16 caracteres hex aleatorios + nombre original + extensión en minúscula.
func newKey(name, ext string) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	return token + name + ext
}
