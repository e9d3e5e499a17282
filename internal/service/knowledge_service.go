package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"ai-quiz-runner/internal/dto"
	"ai-quiz-runner/internal/pkg/logger"
	"ai-quiz-runner/pkg/knowledge"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	knowledgeModule = "KNOWLEDGE"
	previewEntries  = 3
	previewRunes    = 100
)

type IKnowledgeService interface {
	Upload(ctx context.Context, file *multipart.FileHeader) (*dto.UploadKnowledgeResponse, error)
	// Load parses a previously uploaded file.
	Load(ctx context.Context, path string) ([]knowledge.Entry, error)
	// Clear removes every uploaded file.
	Clear(ctx context.Context) (int, error)
}

type knowledgeService struct {
	uploadDir string
	maxBytes  int
	logger    logger.ILogger
}

func NewKnowledgeService(uploadDir string, maxBytes int, log logger.ILogger) IKnowledgeService {
	if maxBytes <= 0 {
		maxBytes = knowledge.DefaultMaxBytes
	}
	return &knowledgeService{uploadDir: uploadDir, maxBytes: maxBytes, logger: log}
}

func (s *knowledgeService) Upload(ctx context.Context, file *multipart.FileHeader) (*dto.UploadKnowledgeResponse, error) {
	if file == nil || file.Filename == "" {
		return nil, badRequest("no file uploaded")
	}
	if !knowledge.Supported(file.Filename) {
		return nil, ErrUnsupportedFile
	}
	if file.Size > int64(s.maxBytes) {
		return nil, badRequest("file too large: %dKB, limit %dKB", file.Size/1024, s.maxBytes/1024)
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, int64(s.maxBytes)+1))
	if err != nil {
		return nil, err
	}
	if len(data) > s.maxBytes {
		return nil, badRequest("file too large, limit %dKB", s.maxBytes/1024)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	entries, err := knowledge.Parse(ext, data)
	if err != nil {
		if errors.Is(err, knowledge.ErrEmpty) {
			return nil, ErrKnowledgeEmpty
		}
		return nil, badRequest("cannot parse knowledge file: %v", err)
	}
	if len(entries) == 0 {
		return nil, ErrKnowledgeEmpty
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	stored := uuid.NewString() + ext
	dest := filepath.Join(s.uploadDir, stored)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}

	s.logger.Info(knowledgeModule, "Knowledge file uploaded", map[string]interface{}{
		"original": file.Filename,
		"stored":   dest,
		"entries":  len(entries),
	})

	preview := make([]dto.EntryPreview, 0, previewEntries)
	for i, e := range entries {
		if i == previewEntries {
			break
		}
		preview = append(preview, dto.EntryPreview{Component: e.Component, Text: truncate(e.RawText, previewRunes)})
	}

	return &dto.UploadKnowledgeResponse{
		Success:        true,
		Filename:       stored,
		Filepath:       dest,
		EntryCount:     len(entries),
		EntriesPreview: preview,
	}, nil
}

func (s *knowledgeService) Load(ctx context.Context, path string) ([]knowledge.Entry, error) {
	path = filepath.Clean(strings.TrimSpace(path))
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrKnowledgeNotFound
		}
		return nil, err
	}

	entries, err := knowledge.Load(path, s.maxBytes)
	switch {
	case errors.Is(err, knowledge.ErrUnsupportedExtension):
		return nil, ErrUnsupportedFile
	case errors.Is(err, knowledge.ErrEmpty):
		return nil, ErrKnowledgeEmpty
	case errors.Is(err, knowledge.ErrTooLarge):
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	case err != nil:
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrKnowledgeEmpty
	}
	return entries, nil
}

func (s *knowledgeService) Clear(ctx context.Context) (int, error) {
	items, err := os.ReadDir(s.uploadDir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, item := range items {
		if item.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.uploadDir, item.Name())); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
