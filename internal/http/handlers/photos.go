package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ecopulse/ecopulse-backend/internal/logger"
	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
)

// PhotoStore сохраняет и удаляет загруженные изображения.
type PhotoStore interface {
	SaveImage(ctx context.Context, userID uuid.UUID, originalName string, r io.Reader) (string, error)
	Delete(ctx context.Context, relativePath string) error
}

// savedPhotos запоминает сохранённые файлы, чтобы удалить их, если сценарий не удался.
type savedPhotos struct {
	store PhotoStore
	paths []string
}

// save читает файл из поля формы. Возвращает nil, если поля нет.
func (s *savedPhotos) save(c *gin.Context, userID uuid.UUID, field string) (*string, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, "не удалось прочитать файл "+field)
	}

	f, err := header.Open()
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, "не удалось открыть файл "+field)
	}
	defer f.Close()

	path, err := s.store.SaveImage(c.Request.Context(), userID, header.Filename, f)
	if err != nil {
		return nil, err
	}
	s.paths = append(s.paths, path)
	return &path, nil
}

// rollback удаляет сохранённые файлы.
func (s *savedPhotos) rollback(ctx context.Context) {
	for _, p := range s.paths {
		removePhoto(ctx, s.store, &p)
	}
	s.paths = nil
}

func removePhoto(ctx context.Context, store PhotoStore, path *string) {
	if path == nil || *path == "" {
		return
	}
	if err := store.Delete(ctx, *path); err != nil {
		logger.WithComponent("photos").WithError(err).WithField("path", *path).Warn("не удалось удалить файл")
	}
}
