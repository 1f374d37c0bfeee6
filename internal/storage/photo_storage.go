package storage

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
)

// Разрешённые типы изображений: MIME по сигнатуре -> допустимые расширения.
var allowedImages = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/gif":  {".gif"},
	"image/webp": {".webp"},
}

// PhotoStorage отвечает за файловое хранилище изображений.
type PhotoStorage struct {
	rootPath       string
	maxUploadBytes int64
}

// NewPhotoStorage создаёт файловое хранилище.
func NewPhotoStorage(rootPath string, maxUploadMB int64) (*PhotoStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &PhotoStorage{
		rootPath:       rootPath,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

func (s *PhotoStorage) Root() string {
	return s.rootPath
}

// SaveImage проверяет сигнатуру файла и сохраняет его. Возвращает относительный путь
// с прямыми слешами, пригодный для URL.
func (s *PhotoStorage) SaveImage(ctx context.Context, userID uuid.UUID, originalName string, r io.Reader) (string, error) {
	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(261)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return "", apperror.Wrap(err, apperror.ErrCodeValidation, "не удалось прочитать файл")
	}

	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return "", apperror.New(apperror.ErrCodeValidation, "не удалось определить тип файла. Разрешены только изображения")
	}
	exts, ok := allowedImages[kind.MIME.Value]
	if !ok {
		return "", apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неподдерживаемый тип файла (%s)", kind.MIME.Value))
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if !contains(exts, ext) {
		return "", apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("расширение файла (%s) не соответствует реальному типу (%s)", ext, kind.Extension))
	}

	rel, _, err := s.Save(ctx, userID, originalName, br)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// Save сохраняет файл и возвращает относительный путь.
func (s *PhotoStorage) Save(ctx context.Context, userID uuid.UUID, originalName string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	safeName := sanitizeFilename(originalName)
	fileName := fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), uuid.NewString()[:8], strings.ToLower(filepath.Ext(safeName)))

	userDir := filepath.Join(s.rootPath, userID.String())
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("storage: не удалось создать каталог пользователя: %w", err)
	}

	targetPath := filepath.Join(userDir, fileName)
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return "", 0, fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	limitedReader := io.LimitedReader{R: r, N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limitedReader)
	if err != nil {
		_ = os.Remove(tempPath)
		return "", 0, fmt.Errorf("storage: ошибка записи файла: %w", err)
	}

	if written > s.maxUploadBytes {
		_ = f.Close()
		_ = os.Remove(tempPath)
		return "", 0, apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("размер файла превышает лимит %d байт", s.maxUploadBytes))
	}

	if err := f.Close(); err != nil {
		return "", 0, fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		return "", 0, fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return filepath.Join(userID.String(), fileName), written, nil
}

// Delete удаляет файл из хранилища. Пути вне корня игнорируются.
func (s *PhotoStorage) Delete(ctx context.Context, relativePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	clean := filepath.Clean(filepath.FromSlash(relativePath))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil
	}

	if err := os.Remove(filepath.Join(s.rootPath, clean)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

// sanitizeFilename удаляет потенциально опасные символы.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" {
		name = "photo"
	}
	return name
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
