package prompts

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/tallyfinance/ai-service/internal/agent/model"
)

//go:embed template/*.txt
var embedded embed.FS

// EmbeddedStore serves the templates compiled into the binary.
type EmbeddedStore struct{}

func (EmbeddedStore) Load(_ context.Context, name string) (string, error) {
	b, err := embedded.ReadFile(path.Join("template", name+".txt"))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", model.ErrTemplateNotFound, name)
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}
