package model

import (
	"context"
	"errors"
)

// ErrTemplateNotFound is returned by a TemplateStore when no template is
// registered under the requested name.
var ErrTemplateNotFound = errors.New("template not found")

// TemplateStore resolves prompt templates by name.
type TemplateStore interface {
	// Load returns the raw template text for name.
	Load(ctx context.Context, name string) (string, error)
}
