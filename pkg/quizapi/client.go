// Package quizapi is the HTTP client for the quiz session service.
package quizapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"ai-quiz-runner/internal/pkg/logger"
	"ai-quiz-runner/pkg/navigator"

	"github.com/go-resty/resty/v2"
)

const logModule = "QuizAPI"

type Client struct {
	http   *resty.Client
	logger logger.ILogger
}

var _ navigator.SessionService = (*Client)(nil)

func New(baseURL string, timeout time.Duration, log logger.ILogger) *Client {
	if log == nil {
		log = logger.NewNopLogger()
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: httpClient, logger: log}
}

// do sends one request and decodes a 2xx body into out (when out is non-nil).
func (c *Client) do(ctx context.Context, method, path string, body interface{}, query map[string]string, out interface{}) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	return c.send(req, method, path, out)
}

func (c *Client) send(req *resty.Request, method, path string, out interface{}) error {
	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Warn(logModule, "Request failed", map[string]interface{}{
			"method": method,
			"path":   path,
			"error":  err.Error(),
		})
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	c.logger.Debug(logModule, "Request completed", map[string]interface{}{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode(),
		"duration": time.Since(start).String(),
	})

	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return &APIError{
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode(),
			Message: errorMessage(resp.StatusCode(), resp.Body()),
		}
	}
	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// --- session service ---

func (c *Client) UploadKnowledge(ctx context.Context, filename string, content []byte) (navigator.UploadResult, error) {
	req := c.http.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(content))

	var res uploadResponse
	if err := c.send(req, http.MethodPost, "/api/upload-knowledge", &res); err != nil {
		return navigator.UploadResult{}, err
	}
	return navigator.UploadResult{
		Filename:   res.Filename,
		Filepath:   res.Filepath,
		EntryCount: res.EntryCount,
	}, nil
}

func (c *Client) Generate(ctx context.Context, req navigator.GenerateRequest) (navigator.GenerateResult, error) {
	var res generateResponse
	if req.Practice {
		body := practiceRequest{QuestionTypes: req.Types, Count: req.Count, Mode: req.Mode}
		if err := c.do(ctx, http.MethodPost, "/api/wrong-questions/practice", body, nil, &res); err != nil {
			return navigator.GenerateResult{}, err
		}
	} else {
		body := generateRequest{
			Filepath: req.Filepath,
			Types:    req.Types,
			Count:    req.Count,
			Mode:     req.Mode,
			Seed:     req.Seed,
		}
		if err := c.do(ctx, http.MethodPost, "/api/generate-questions", body, nil, &res); err != nil {
			return navigator.GenerateResult{}, err
		}
	}
	if res.SessionID == "" {
		return navigator.GenerateResult{}, fmt.Errorf("generate: response carries no session_id")
	}
	return navigator.GenerateResult{SessionID: res.SessionID, TotalCount: res.TotalCount}, nil
}

func (c *Client) NextQuestion(ctx context.Context, sessionID string, skip bool) (navigator.NextResult, error) {
	var res nextResponse
	if err := c.do(ctx, http.MethodPost, "/api/get-question", sessionRequest{SessionID: sessionID, Skip: skip}, nil, &res); err != nil {
		return navigator.NextResult{}, err
	}

	out := navigator.NextResult{
		Finished:      res.Finished,
		CurrentIndex:  res.CurrentIndex,
		TotalCount:    res.TotalCount,
		CorrectCount:  res.CorrectCount,
		NextAvailable: res.NextAvailable,
	}
	if res.Question != nil && !res.Finished {
		q := res.Question.toDomain()
		out.Question = &q
	}
	return out, nil
}

func (c *Client) SubmitAnswer(ctx context.Context, sessionID, answer string) (navigator.Verdict, error) {
	var res submitResponse
	if err := c.do(ctx, http.MethodPost, "/api/submit-answer", submitRequest{SessionID: sessionID, Answer: answer}, nil, &res); err != nil {
		return navigator.Verdict{}, err
	}
	return navigator.Verdict{
		IsCorrect:     res.IsCorrect,
		Explanation:   res.Explanation,
		CorrectAnswer: res.CorrectAnswer,
		NextAvailable: res.NextAvailable,
	}, nil
}

func (c *Client) SessionStatus(ctx context.Context, sessionID string) (navigator.Status, error) {
	var res statusResponse
	if err := c.do(ctx, http.MethodPost, "/api/session-status", sessionRequest{SessionID: sessionID}, nil, &res); err != nil {
		return navigator.Status{}, err
	}
	return navigator.Status{
		CurrentIndex:  res.CurrentIndex,
		AnsweredCount: res.AnsweredCount,
		TotalCount:    res.TotalCount,
		CorrectCount:  res.CorrectCount,
		Finished:      res.Finished,
	}, nil
}

func (c *Client) ResetData(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/reset-data", nil, nil, nil)
}

// --- history ---

func (c *Client) AnswerHistory(ctx context.Context, q HistoryQuery) (*HistoryPage, error) {
	params := map[string]string{}
	setInt(params, "page", q.Page)
	setInt(params, "page_size", q.PageSize)
	setString(params, "session_id", q.SessionID)
	setString(params, "question_type", q.QuestionType)
	if q.IsCorrect != nil {
		params["is_correct"] = strconv.FormatBool(*q.IsCorrect)
	}
	if q.DateFrom != nil {
		params["date_from"] = q.DateFrom.UTC().Format(time.RFC3339)
	}
	if q.DateTo != nil {
		params["date_to"] = q.DateTo.UTC().Format(time.RFC3339)
	}

	var res envelope[HistoryPage]
	if err := c.do(ctx, http.MethodGet, "/api/answer-history", nil, params, &res); err != nil {
		return nil, err
	}
	return &res.Data, nil
}

func (c *Client) HistorySessions(ctx context.Context, limit int) ([]SessionSummary, error) {
	params := map[string]string{}
	setInt(params, "limit", limit)

	var res envelope[[]SessionSummary]
	if err := c.do(ctx, http.MethodGet, "/api/answer-history/sessions", nil, params, &res); err != nil {
		return nil, err
	}
	return res.Data, nil
}

// --- wrong-question book ---

func (c *Client) WrongQuestions(ctx context.Context, q WrongQuery) (*WrongPage, error) {
	params := map[string]string{}
	setInt(params, "page", q.Page)
	setInt(params, "page_size", q.PageSize)
	setString(params, "question_type", q.QuestionType)
	setString(params, "sort_by", q.SortBy)
	setString(params, "order", q.Order)

	var res envelope[WrongPage]
	if err := c.do(ctx, http.MethodGet, "/api/wrong-questions", nil, params, &res); err != nil {
		return nil, err
	}
	return &res.Data, nil
}

func (c *Client) WrongStats(ctx context.Context) (*WrongStats, error) {
	var res envelope[WrongStats]
	if err := c.do(ctx, http.MethodGet, "/api/wrong-questions/stats", nil, nil, &res); err != nil {
		return nil, err
	}
	return &res.Data, nil
}

func (c *Client) WrongQuestion(ctx context.Context, identifier string) (*WrongQuestion, error) {
	var res envelope[WrongQuestion]
	if err := c.do(ctx, http.MethodGet, "/api/wrong-questions/"+identifier, nil, nil, &res); err != nil {
		return nil, err
	}
	return &res.Data, nil
}

func (c *Client) DeleteWrongQuestion(ctx context.Context, identifier string) error {
	return c.do(ctx, http.MethodDelete, "/api/wrong-questions/"+identifier, nil, nil, nil)
}

// ClearWrongQuestions empties the book and reports how many entries were removed.
func (c *Client) ClearWrongQuestions(ctx context.Context) (int, error) {
	var res envelope[struct {
		DeletedCount int `json:"deleted_count"`
	}]
	if err := c.do(ctx, http.MethodDelete, "/api/wrong-questions", nil, nil, &res); err != nil {
		return 0, err
	}
	return res.Data.DeletedCount, nil
}

// --- AI config ---

// AIConfig returns nil when no configuration is stored.
func (c *Client) AIConfig(ctx context.Context) (*AIConfig, error) {
	var res envelope[*AIConfig]
	if err := c.do(ctx, http.MethodGet, "/api/ai-config", nil, nil, &res); err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (c *Client) SaveAIConfig(ctx context.Context, cfg AIConfig) (*AIConfig, error) {
	var res envelope[AIConfig]
	if err := c.do(ctx, http.MethodPut, "/api/ai-config", cfg, nil, &res); err != nil {
		return nil, err
	}
	return &res.Data, nil
}

func (c *Client) DeleteAIConfig(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/ai-config", nil, nil, nil)
}

func (c *Client) TestAIConfig(ctx context.Context, cfg AIConfig) (*AITestResult, error) {
	var res envelope[AITestResult]
	if err := c.do(ctx, http.MethodPost, "/api/ai-config/test", cfg, nil, &res); err != nil {
		return nil, err
	}
	return &res.Data, nil
}

func setInt(params map[string]string, key string, v int) {
	if v > 0 {
		params[key] = strconv.Itoa(v)
	}
}

func setString(params map[string]string, key, v string) {
	if v != "" {
		params[key] = v
	}
}
