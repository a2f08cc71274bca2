package source

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
)

// FileID uniquely identifies a source file within a FileSet.
type FileID uint32

// File keeps the text of a compilation unit when it is available. Trees
// built programmatically have a path but no content.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	lines   []uint32 // offset of the first byte of every line
}

// FileSet is the registry of files referenced by spans.
type FileSet struct {
	files []File
	index map[string]FileID
}

func NewFileSet() *FileSet {
	return &FileSet{index: make(map[string]FileID)}
}

// Add registers a file and returns its id. Re-adding a path returns a fresh
// id and makes the path point to it.
func (fs *FileSet) Add(path string, content []byte) FileID {
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("file count overflow: %w", err))
	}
	content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	id := FileID(n)
	path = filepath.ToSlash(filepath.Clean(path))
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    path,
		Content: content,
		lines:   lineStarts(content),
	})
	fs.index[path] = id
	return id
}

// Load reads a file from disk and registers it.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return fs.Add(path, content), nil
}

func (fs *FileSet) Get(id FileID) *File {
	if int(id) >= len(fs.files) {
		return nil
	}
	return &fs.files[id]
}

func (fs *FileSet) Lookup(path string) (FileID, bool) {
	id, ok := fs.index[filepath.ToSlash(filepath.Clean(path))]
	return id, ok
}

func (fs *FileSet) Len() int {
	return len(fs.files)
}

// Line returns the text of a 1-based line without its terminator.
func (f *File) Line(line uint32) (string, bool) {
	if f == nil || line == 0 || int(line) > len(f.lines) || len(f.Content) == 0 {
		return "", false
	}
	start := f.lines[line-1]
	end := uint32(len(f.Content))
	if int(line) < len(f.lines) {
		end = f.lines[line] - 1
	}
	text := f.Content[start:end]
	text = bytes.TrimSuffix(text, []byte{'\n'})
	text = bytes.TrimSuffix(text, []byte{'\r'})
	return string(text), true
}

func lineStarts(content []byte) []uint32 {
	if len(content) == 0 {
		return nil
	}
	out := []uint32{0}
	for i, b := range content {
		if b == '\n' && i+1 < len(content) {
			out = append(out, uint32(i+1))
		}
	}
	return out
}
