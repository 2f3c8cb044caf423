package repo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tallyfinance/ai-service/internal/agent/model"
)

// FileTemplateStore reads "<dir>/<name>.txt" on every Load, so edits on disk
// apply to the next request.
type FileTemplateStore struct {
	dir string
}

func NewFileTemplateStore(dir string) *FileTemplateStore {
	return &FileTemplateStore{dir: dir}
}

func (f *FileTemplateStore) Load(_ context.Context, name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: invalid name %q", model.ErrTemplateNotFound, name)
	}
	b, err := os.ReadFile(filepath.Join(f.dir, name+".txt"))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", model.ErrTemplateNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("read template %s: %w", name, err)
	}
	return string(b), nil
}
