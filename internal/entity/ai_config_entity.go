package entity

import "time"

const DefaultAiTimeoutSeconds = 10.0

// AiConfig is the user-supplied model endpoint. Key is a bearer token.
type AiConfig struct {
	Url             string
	Key             string
	Model           string
	TimeoutSeconds  float64
	DevDocument     string
	EnableAiGrading bool
	UpdatedAt       time.Time
}

func (c *AiConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return time.Duration(DefaultAiTimeoutSeconds * float64(time.Second))
	}
	return time.Duration(c.TimeoutSeconds * float64(time.Second))
}
