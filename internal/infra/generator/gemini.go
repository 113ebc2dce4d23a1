package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/KasumiMercury/primind-floor-operations/internal/observability/tracing"
)

const defaultGeminiModel = "gemini-1.5-pro"

// GeminiClient generates plans through the Gemini API.
type GeminiClient struct {
	client    *genai.Client
	model     string
	maxTokens int
}

func NewGeminiClient(ctx context.Context, apiKey, model string, maxTokens int) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiClient{client: client, model: model, maxTokens: maxTokens}, nil
}

func (g *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = g.model
	}

	ctx, span := tracing.StartGeneratorSpan(ctx, "gemini", modelName)
	defer span.End()

	model := g.client.GenerativeModel(modelName)
	if req.System != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.System))
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = g.maxTokens
	}
	if maxTokens > 0 {
		model.SetMaxOutputTokens(int32(maxTokens))
	}
	if req.JSONMode {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.User))
	if err != nil {
		ge := classifyGemini(ctx, err)
		tracing.RecordGeneratorResult(span, 0, ge)
		return "", ge
	}

	var sb strings.Builder
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		ge := &Error{Kind: KindEmptyResponse}
		tracing.RecordGeneratorResult(span, 0, ge)
		return "", ge
	}

	tracing.RecordGeneratorResult(span, len(text), nil)
	return text, nil
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}

func classifyGemini(ctx context.Context, err error) *Error {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return &Error{Kind: KindEmptyResponse, Err: err}
	}
	if ctx.Err() != nil {
		return classify(ctx, err)
	}
	st, ok := status.FromError(err)
	if !ok || st.Code() == codes.Unknown {
		return classify(ctx, err)
	}
	switch st.Code() {
	case codes.DeadlineExceeded:
		return &Error{Kind: KindTimeout, Err: err}
	case codes.Canceled:
		return &Error{Kind: KindCanceled, Err: err}
	}
	return &Error{Kind: KindNonOKStatus, StatusCode: httpStatusFromCode(st.Code()), Body: st.Message(), Err: err}
}

func httpStatusFromCode(c codes.Code) int {
	switch c {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
