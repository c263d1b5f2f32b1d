package source

import (
	"context"
	"os"
)

// FileSource reads the state from a dump file. It behaves exactly like a
// remote backend: read failures are transient so the loop falls back to
// the previous snapshot while the file is being rewritten.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (f *FileSource) ID() string       { return "file" }
func (f *FileSource) Name() string     { return "State dump" }
func (f *FileSource) HeroURL() string  { return "" }
func (f *FileSource) TokenURL() string { return "" }

func (f *FileSource) Fetch(_ context.Context, _, _ string) ([]byte, error) {
	body, err := os.ReadFile(f.path)
	if err != nil {
		return nil, newFetchError(KindConnection, f.path, err)
	}
	return body, nil
}
