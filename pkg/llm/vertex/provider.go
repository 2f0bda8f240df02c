package vertex

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"legal-aid-be/pkg/llm"
)

// VertexProvider is a Gemini backend on Vertex AI.
type VertexProvider struct {
	client    *genai.Client
	modelName string
	timeout   time.Duration
}

var _ llm.LLMProvider = &VertexProvider{}

// NewVertexProvider bounds every call by timeout; zero leaves calls to the
// caller's context.
func NewVertexProvider(ctx context.Context, projectID, region, modelName string, timeout time.Duration) (*VertexProvider, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexProvider: projectID and region cannot be empty")
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash-001"
	}

	client, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	return &VertexProvider{client: client, modelName: modelName, timeout: timeout}, nil
}

func (p *VertexProvider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}

func (p *VertexProvider) model(opts *llm.Options) *genai.GenerativeModel {
	name := p.modelName
	if opts.Model != "" {
		name = opts.Model
	}
	model := p.client.GenerativeModel(name)

	if opts.SystemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(opts.SystemPrompt)},
		}
	}
	if opts.Temperature > 0 {
		model.SetTemperature(float32(opts.Temperature))
	}
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(opts.MaxTokens))
	}
	if len(opts.Choices) > 0 {
		model.GenerationConfig.ResponseMIMEType = "text/x.enum"
		model.GenerationConfig.ResponseSchema = &genai.Schema{
			Type: genai.TypeString,
			Enum: opts.Choices,
		}
	}
	model.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockMediumAndAbove},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockMediumAndAbove},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockMediumAndAbove},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockMediumAndAbove},
	}
	return model
}

func (p *VertexProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	if len(history) == 0 {
		return "", fmt.Errorf("%w: empty history", llm.ErrUpstreamRejected)
	}
	options := llm.Apply(llm.Options{}, opts...)
	model := p.model(options)

	session := model.StartChat()
	for _, msg := range history[:len(history)-1] {
		session.History = append(session.History, &genai.Content{
			Role:  geminiRole(msg.Role),
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	last := history[len(history)-1]
	resp, err := session.SendMessage(ctx, genai.Text(last.Content))
	if err != nil {
		return "", fmt.Errorf("vertex chat: %w", classify(ctx, err))
	}
	return extractText(resp)
}

func (p *VertexProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	options := llm.Apply(llm.Options{}, opts...)
	resp, err := p.model(options).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("vertex generate: %w", classify(ctx, err))
	}
	return extractText(resp)
}

func (p *VertexProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

func geminiRole(role string) string {
	if role == llm.RoleAssistant || role == llm.RoleModel {
		return "model"
	}
	return "user"
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: no candidates in response", llm.ErrUpstreamRejected)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String(), nil
}

// classify maps a Vertex error onto the upstream taxonomy. An expired call
// context is a timeout whatever status the client surfaced.
func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", llm.ErrUpstreamTimeout, err)
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return fmt.Errorf("%w: %v", llm.ErrUpstreamRejected, err)
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.DeadlineExceeded:
			return fmt.Errorf("%w: %v", llm.ErrUpstreamTimeout, err)
		case codes.InvalidArgument, codes.FailedPrecondition, codes.PermissionDenied, codes.Unauthenticated, codes.NotFound:
			return fmt.Errorf("%w: %v", llm.ErrUpstreamRejected, err)
		case codes.Unavailable, codes.ResourceExhausted, codes.Internal, codes.Aborted:
			return fmt.Errorf("%w: %v", llm.ErrUpstreamUnavailable, err)
		}
	}
	return llm.Classify(err, 0, "")
}
