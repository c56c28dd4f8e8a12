package services

import (
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/pkg/errors"

	"github.com/rohits-web03/insurguide/internal/config"
	"github.com/rohits-web03/insurguide/internal/repositories"
)

func newOpenAIClient(cfg config.LLMConfig, httpClient *http.Client) openai.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// failures go straight back to the caller
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return openai.NewClient(opts...)
}

// classifyOpenAIError maps an API error response to ErrUpstream and anything
// else (dial failures, timeouts) to ErrServiceUnavailable.
func classifyOpenAIError(op string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return errors.Wrapf(repositories.ErrUpstream, "openai %s: status %d", op, apiErr.StatusCode)
	}
	return errors.Wrapf(repositories.ErrServiceUnavailable, "openai %s: %v", op, err)
}
