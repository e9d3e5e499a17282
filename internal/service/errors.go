package service

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Service errors carry their HTTP status; the error middleware renders them.
var (
	ErrSessionNotFound      = fiber.NewError(fiber.StatusNotFound, "session not found or expired")
	ErrSessionFinished      = fiber.NewError(fiber.StatusBadRequest, "all questions in this session have been answered")
	ErrKnowledgeNotFound    = fiber.NewError(fiber.StatusNotFound, "knowledge file not found")
	ErrKnowledgeEmpty       = fiber.NewError(fiber.StatusBadRequest, "knowledge file has no entries")
	ErrUnsupportedFile      = fiber.NewError(fiber.StatusBadRequest, "unsupported file type, upload a .txt or .md file")
	ErrNoQuestions          = fiber.NewError(fiber.StatusBadRequest, "question bank is empty, check the knowledge file or configure an AI model")
	ErrNoWrongQuestions     = fiber.NewError(fiber.StatusBadRequest, "the wrong-question book is empty")
	ErrNoMatchingWrong      = fiber.NewError(fiber.StatusBadRequest, "no wrong questions match the requested types")
	ErrWrongQuestionMissing = fiber.NewError(fiber.StatusNotFound, "wrong question not found")
	ErrAiConfigMissing      = fiber.NewError(fiber.StatusNotFound, "no AI configuration stored")
)

func badRequest(format string, args ...interface{}) error {
	return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf(format, args...))
}
