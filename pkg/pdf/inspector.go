package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var ErrInvalidPDF = errors.New("invalid pdf document")

// Info is what the pipeline needs to know about an upload before it is
// stored.
type Info struct {
	Pages int
}

// Inspector validates uploads with pdfcpu in relaxed mode, which accepts
// the slightly broken files scanners and phone apps tend to produce.
type Inspector struct {
	conf *model.Configuration
}

func NewInspector() *Inspector {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	return &Inspector{conf: cfg}
}

func (i *Inspector) Inspect(ctx context.Context, data []byte) (info *Info, err error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidPDF)
	}
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF-")) {
		return nil, fmt.Errorf("%w: missing header", ErrInvalidPDF)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// pdfcpu panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			info = nil
			err = fmt.Errorf("%w: %v", ErrInvalidPDF, r)
		}
	}()

	if err := api.Validate(bytes.NewReader(data), i.conf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}

	pages, err := api.PageCount(bytes.NewReader(data), i.conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	if pages < 1 {
		return nil, fmt.Errorf("%w: no pages", ErrInvalidPDF)
	}

	return &Info{Pages: pages}, nil
}
