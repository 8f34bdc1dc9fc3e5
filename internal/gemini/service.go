package gemini

import (
	"context"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/cricgurufans-star/AI-Video-Maker/internal/failure"
)

// Service is the slice of the remote API the client depends on.
type Service interface {
	GenerateVideos(ctx context.Context, model, prompt string, image *genai.Image, config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error)
	GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error)
}

// Dialer opens a Service authenticated with credential.
type Dialer func(ctx context.Context, credential string) (Service, error)

type DialOptions struct {
	BaseURL    string
	APIVersion string
	HTTPClient *http.Client
}

// NewDialer returns a Dialer backed by the Gemini API.
func NewDialer(opts DialOptions) Dialer {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	apiVersion := strings.TrimSpace(opts.APIVersion)

	return func(ctx context.Context, credential string) (Service, error) {
		if strings.TrimSpace(credential) == "" {
			return nil, failure.Auth("api key is empty", nil)
		}

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:     credential,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: opts.HTTPClient,
			HTTPOptions: genai.HTTPOptions{
				BaseURL:    baseURL,
				APIVersion: apiVersion,
			},
		})
		if err != nil {
			return nil, failure.Validation("create genai client", err)
		}
		return genaiService{client: client}, nil
	}
}

type genaiService struct {
	client *genai.Client
}

func (s genaiService) GenerateVideos(ctx context.Context, model, prompt string, image *genai.Image, config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error) {
	return s.client.Models.GenerateVideos(ctx, model, prompt, image, config)
}

func (s genaiService) GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
	return s.client.Operations.GetVideosOperation(ctx, op, nil)
}
