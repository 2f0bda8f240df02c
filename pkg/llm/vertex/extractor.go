package vertex

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"legal-aid-be/pkg/llm"
)

const extractorSystemPrompt = "You are a document transcription tool. You return the exact text of legal documents without commentary."

const extractorUserPrompt = `Transcribe the full text of the attached legal notice.

Keep paragraph breaks, names, addresses, dates, reference numbers and section citations exactly as written.
Ignore page numbers and repeated headers or footers.
Return only the transcribed text.`

// Extract reads the notice text out of a PDF by handing the document to
// Gemini inline.
func (p *VertexProvider) Extract(ctx context.Context, fileName string, data []byte) (string, error) {
	options := llm.Apply(llm.Options{
		SystemPrompt: extractorSystemPrompt,
		Temperature:  0.1,
	})
	model := p.model(options)

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	resp, err := model.GenerateContent(ctx,
		genai.Blob{MIMEType: "application/pdf", Data: data},
		genai.Text(extractorUserPrompt),
	)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", fileName, classify(ctx, err))
	}

	text, err := extractText(resp)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text), nil
}
