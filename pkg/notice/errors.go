package notice

import "errors"

var (
	ErrClassificationAmbiguous = errors.New("notice classification was ambiguous")
	ErrDerivationEmpty         = errors.New("text generation returned no usable content")
	ErrStorageWriteFailed      = errors.New("storage write failed")
	ErrNotFound                = errors.New("record not found")
	ErrValidationFailed        = errors.New("validation failed")
	ErrInvalidStage            = errors.New("operation not allowed at current stage")
	ErrStaleRecord             = errors.New("case record was modified concurrently")
)
