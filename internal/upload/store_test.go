package upload

import (
	"bytes"
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeFileHeader собирает настоящий multipart.FileHeader из содержимого файла.
func makeFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("photo", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	reader := multipart.NewReader(&body, w.Boundary())
	form, err := reader.ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	files := form.File["photo"]
	require.Len(t, files, 1)
	return files[0]
}

func newTestStore(t *testing.T, maxBytes int64) *LocalStore {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	store, err := NewLocalStore(t.TempDir(), maxBytes, []string{"jpg", "jpeg", "png", "gif"}, logger)
	require.NoError(t, err)
	return store
}

func TestSave_NoFile(t *testing.T) {
	store := newTestStore(t, 1024)

	path, err := store.Save(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestSave_Success(t *testing.T) {
	store := newTestStore(t, 1024)
	fh := makeFileHeader(t, "evidence.JPG", []byte("jpeg-bytes"))

	path, err := store.Save(context.Background(), fh)

	require.NoError(t, err)
	require.NotEmpty(t, path)
	assert.True(t, strings.HasSuffix(path, ".jpg"), "расширение должно быть приведено к нижнему регистру")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)
}

func TestSave_UniqueNames(t *testing.T) {
	store := newTestStore(t, 1024)

	first, err := store.Save(context.Background(), makeFileHeader(t, "a.png", []byte("one")))
	require.NoError(t, err)
	second, err := store.Save(context.Background(), makeFileHeader(t, "a.png", []byte("two")))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, filepath.Dir(first), filepath.Dir(second))
}

func TestSave_FileTooLarge(t *testing.T) {
	store := newTestStore(t, 4)
	fh := makeFileHeader(t, "big.jpg", []byte("way more than four bytes"))

	_, err := store.Save(context.Background(), fh)

	require.ErrorIs(t, err, ErrFileTooLarge)
}

func TestSave_UnsupportedExtension(t *testing.T) {
	store := newTestStore(t, 1024)
	fh := makeFileHeader(t, "report.pdf", []byte("%PDF"))

	_, err := store.Save(context.Background(), fh)

	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestSave_CanceledContext(t *testing.T) {
	store := newTestStore(t, 1024)
	fh := makeFileHeader(t, "a.gif", []byte("gif-bytes"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Save(ctx, fh)

	require.ErrorIs(t, err, ErrStorageWrite)
}
