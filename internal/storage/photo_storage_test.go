package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestSaveImage_AcceptsPNG(t *testing.T) {
	s, err := NewPhotoStorage(t.TempDir(), 1)
	require.NoError(t, err)
	userID := uuid.New()

	rel, err := s.SaveImage(context.Background(), userID, "trash.PNG", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Contains(t, rel, userID.String()+"/")
	assert.Equal(t, ".png", filepath.Ext(rel))

	data, err := os.ReadFile(filepath.Join(s.Root(), filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	require.NoError(t, s.Delete(context.Background(), rel))
	_, err = os.Stat(filepath.Join(s.Root(), filepath.FromSlash(rel)))
	assert.True(t, os.IsNotExist(err))
}

func TestSaveImage_Rejects(t *testing.T) {
	s, err := NewPhotoStorage(t.TempDir(), 1)
	require.NoError(t, err)

	tests := []struct {
		name    string
		file    string
		content []byte
	}{
		{"not an image", "notes.png", []byte("просто текст")},
		{"extension mismatch", "photo.jpg", pngHeader},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.SaveImage(context.Background(), uuid.New(), tt.file, bytes.NewReader(tt.content))
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
		})
	}
}

func TestSave_SizeLimit(t *testing.T) {
	s, err := NewPhotoStorage(t.TempDir(), 1)
	require.NoError(t, err)

	big := bytes.Repeat([]byte{1}, 1024*1024+1)
	_, _, err = s.Save(context.Background(), uuid.New(), "big.png", bytes.NewReader(big))
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestDelete_IgnoresEscapes(t *testing.T) {
	s, err := NewPhotoStorage(t.TempDir(), 1)
	require.NoError(t, err)
	assert.NoError(t, s.Delete(context.Background(), "../../etc/passwd"))
}
