package dto

type AiConfigRequest struct {
	Url             string  `json:"url" validate:"required,url"`
	Key             string  `json:"key" validate:"required"`
	Model           string  `json:"model" validate:"required"`
	Timeout         float64 `json:"timeout" validate:"omitempty,gt=0,lte=300"`
	DevDocument     string  `json:"dev_document,omitempty"`
	EnableAiGrading bool    `json:"enable_ai_grading"`
}

type AiConfigResponse struct {
	Url             string  `json:"url"`
	Key             string  `json:"key"`
	Model           string  `json:"model"`
	Timeout         float64 `json:"timeout"`
	DevDocument     string  `json:"dev_document,omitempty"`
	EnableAiGrading bool    `json:"enable_ai_grading"`
}

type AiConfigTestResponse struct {
	Ok      bool   `json:"ok"`
	Message string `json:"message"`
}

type DeleteStatusResponse struct {
	Status string `json:"status"`
}
