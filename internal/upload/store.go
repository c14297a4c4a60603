package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	// ErrFileTooLarge - файл превышает настроенный максимальный размер.
	ErrFileTooLarge = errors.New("file too large")
	// ErrUnsupportedType - расширение файла не входит в разрешенный набор.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrStorageWrite - запись файла на диск не удалась.
	ErrStorageWrite = errors.New("storage write failed")
)

// LocalStore сохраняет фотографии заявок в локальный каталог.
// Имя файла генерируется заново для каждой загрузки, поэтому коллизий
// с предыдущими файлами не бывает.
type LocalStore struct {
	dir         string
	maxBytes    int64
	allowedExts map[string]struct{}
	logger      *logrus.Logger
}

// NewLocalStore создает хранилище и каталог для загрузок, если его нет.
func NewLocalStore(dir string, maxBytes int64, allowedExts []string, logger *logrus.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	exts := make(map[string]struct{}, len(allowedExts))
	for _, ext := range allowedExts {
		exts[strings.ToLower(ext)] = struct{}{}
	}

	return &LocalStore{
		dir:         dir,
		maxBytes:    maxBytes,
		allowedExts: exts,
		logger:      logger,
	}, nil
}

// Save проверяет и сохраняет фотографию, возвращая путь к файлу.
// Отсутствие файла - не ошибка: возвращается пустой путь.
// Успешная запись необратима: компенсирующей очистки при падении
// последующих шагов заявки нет.
func (s *LocalStore) Save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", nil
	}

	if fh.Size > s.maxBytes {
		return "", fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, fh.Size, s.maxBytes)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fh.Filename), "."))
	if _, ok := s.allowedExts[ext]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	defer src.Close()

	name := fmt.Sprintf("%s.%s", uuid.New().String(), ext)
	dst := filepath.Join(s.dir, name)

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}

	if err := copyWithContext(ctx, out, src); err != nil {
		out.Close()
		// Недописанный файл никому не нужен
		if rmErr := os.Remove(dst); rmErr != nil {
			s.logger.WithError(rmErr).WithField("path", dst).Warn("failed to remove partial upload")
		}
		return "", fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}

	if err := out.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}

	s.logger.WithField("path", dst).Debug("photo stored")
	return dst, nil
}

// copyWithContext копирует данные порциями, проверяя контекст между ними,
// чтобы зависшая запись не блокировала запрос бесконечно.
func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader) error {
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
