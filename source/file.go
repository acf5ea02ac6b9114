package source

import (
	"context"
	"fmt"
	"os"

	"github.com/spektr-org/solutions/config"
	"github.com/spektr-org/solutions/helpers"
)

// File is a CSV file on disk.
type File struct {
	path string
	opts []helpers.Option
}

// NewFile returns a source reading the CSV file at path.
func NewFile(path string, opts ...helpers.Option) *File {
	return &File{path: path, opts: opts}
}

func (f *File) Kind() string { return config.SourceCSV }

func (f *File) Name() string { return f.path }

// Fingerprint is the file's modification time and size.
func (f *File) Fingerprint(_ context.Context) (string, error) {
	info, err := os.Stat(f.path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", f.path, err)
	}
	return fmt.Sprintf("%d:%d", info.ModTime().UnixNano(), info.Size()), nil
}

// Load parses the file.
func (f *File) Load(_ context.Context) (*helpers.Result, error) {
	fh, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.path, err)
	}
	defer fh.Close()

	res, err := helpers.ParseCSV(fh, f.opts...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", f.path, err)
	}
	return res, nil
}
