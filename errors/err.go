package errors

import (
	"fmt"
)

var (
	ErrInvalidConfig       = fmt.Errorf("spoar: invalid config")
	ErrNotFound            = fmt.Errorf("spoar: not found")
	ErrEmbedding           = fmt.Errorf("spoar: embedding failed")
	ErrToolNotFound        = fmt.Errorf("spoar: tool not found")
	ErrDuplicateTool       = fmt.Errorf("spoar: tool already registered")
	ErrDimensionMismatch   = fmt.Errorf("spoar: embedding dimension mismatch")
	ErrUnsupportedProvider = fmt.Errorf("spoar: unsupported provider")
	ErrInvalidParams       = fmt.Errorf("spoar: invalid params")
)
