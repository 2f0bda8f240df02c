package pdf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInspector_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "plain text", data: []byte("LEGAL NOTICE\nTo whom it may concern")},
		{name: "png header", data: []byte("\x89PNG\r\n\x1a\n")},
		{name: "truncated pdf", data: []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog")},
	}

	in := NewInspector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := in.Inspect(context.Background(), tt.data)
			assert.ErrorIs(t, err, ErrInvalidPDF)
			assert.Nil(t, info)
		})
	}
}

func TestInspector_HonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewInspector().Inspect(ctx, []byte("%PDF-1.7\n"))
	assert.ErrorIs(t, err, context.Canceled)
}
