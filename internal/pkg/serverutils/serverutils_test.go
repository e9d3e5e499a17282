package serverutils

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	SessionId string `json:"session_id" validate:"required"`
	Count     int    `json:"count" validate:"omitempty,min=1,max=5"`
	Mode      string `json:"mode" validate:"omitempty,oneof=sequential random"`
	Url       string `json:"url" validate:"omitempty,url"`
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     sampleRequest
		wantMsg string
	}{
		{name: "valid", req: sampleRequest{SessionId: "s", Count: 3, Mode: "random"}},
		{name: "missing", req: sampleRequest{}, wantMsg: "sessionid is required"},
		{name: "too many", req: sampleRequest{SessionId: "s", Count: 9}, wantMsg: "count must be at most 5"},
		{name: "bad mode", req: sampleRequest{SessionId: "s", Mode: "loop"}, wantMsg: "mode must be one of [sequential random]"},
		{name: "bad url", req: sampleRequest{SessionId: "s", Url: "nope"}, wantMsg: "url must be a valid URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(tt.req)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			var fe *fiber.Error
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, fiber.StatusBadRequest, fe.Code)
			assert.Equal(t, tt.wantMsg, fe.Message)
		})
	}
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/teapot", func(ctx *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})
	app.Get("/boom", func(ctx *fiber.Ctx) error {
		return errors.New("disk on fire")
	})
	app.Get("/ok", func(ctx *fiber.Ctx) error {
		return ctx.JSON(SuccessResponse("fine", map[string]int{"n": 1}))
	})

	tests := []struct {
		path    string
		status  int
		success bool
		message string
	}{
		{"/teapot", fiber.StatusTeapot, false, "short and stout"},
		{"/boom", fiber.StatusInternalServerError, false, "disk on fire"},
		{"/ok", fiber.StatusOK, true, "fine"},
		{"/missing", fiber.StatusNotFound, false, "Cannot GET /missing"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.success, body["success"])
			assert.Equal(t, tt.message, body["message"])
			if !tt.success {
				assert.Equal(t, tt.message, body["error"])
				assert.EqualValues(t, tt.status, body["code"])
			}
		})
	}
}
