// Package project reads and writes .scormproj project files.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"github.com/rcliao/course-media/internal/model"
)

// Extension is the project file extension.
const Extension = ".scormproj"

const (
	keyProject = "project"
	keyContent = "course_content"
)

// ErrLocked is returned when another process holds the project lock.
var ErrLocked = errors.New("project file is locked by another process")

// ErrNoContent is returned by Content when the file has no course content yet.
var ErrNoContent = errors.New("project has no course content")

// Info is the project header.
type Info struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// File is a loaded project file. Top-level keys other than course_content are
// written back unchanged by Save.
type File struct {
	Path    string
	Info    Info
	Content *model.ContentTree

	raw map[string]json.RawMessage
}

// Load reads a project file.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}

	f := &File{Path: path}
	if err := json.Unmarshal(b, &f.raw); err != nil {
		return nil, fmt.Errorf("parse project %s: %w", filepath.Base(path), err)
	}
	if f.raw == nil {
		return nil, fmt.Errorf("parse project %s: not a JSON object", filepath.Base(path))
	}

	if p, ok := f.raw[keyProject]; ok {
		if err := json.Unmarshal(p, &f.Info); err != nil {
			return nil, fmt.Errorf("parse project header: %w", err)
		}
	}
	if c, ok := f.raw[keyContent]; ok && string(c) != "null" {
		var tree model.ContentTree
		if err := json.Unmarshal(c, &tree); err != nil {
			return nil, fmt.Errorf("parse course content: %w", err)
		}
		f.Content = &tree
	}
	return f, nil
}

// ID returns the project id from the header, falling back to the file name.
func (f *File) ID() string {
	if id := strings.TrimSpace(f.Info.ID); id != "" {
		return id
	}
	return ExtractProjectID(f.Path)
}

// Tree returns the course content or ErrNoContent.
func (f *File) Tree() (model.ContentTree, error) {
	if f.Content == nil {
		return model.ContentTree{}, ErrNoContent
	}
	return *f.Content, nil
}

// Save writes the file back to its path. The write goes through a temporary
// file in the same directory so a crash never leaves a truncated project.
func (f *File) Save() error {
	if f.raw == nil {
		f.raw = map[string]json.RawMessage{}
	}
	if f.Content != nil {
		c, err := json.Marshal(f.Content)
		if err != nil {
			return fmt.Errorf("encode course content: %w", err)
		}
		f.raw[keyContent] = c
	}

	b, err := json.MarshalIndent(f.raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.Path), filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(b, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write project: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write project: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("replace project: %w", err)
	}
	return nil
}

// ExtractProjectID returns the numeric id embedded in a project file name
// ("Name_1234567890.scormproj" or "1234567890.scormproj"). Anything else,
// including a bare id, is returned unchanged.
func ExtractProjectID(pathOrID string) string {
	if !strings.Contains(pathOrID, Extension) {
		return pathOrID
	}
	name := filepath.Base(pathOrID)

	us := strings.LastIndexByte(name, '_')
	dot := strings.LastIndexByte(name, '.')
	if us >= 0 && us < dot {
		if id := name[us+1 : dot]; isDigits(id) {
			return id
		}
	}
	if dot := strings.IndexByte(name, '.'); dot >= 0 {
		if id := name[:dot]; isDigits(id) {
			return id
		}
	}
	return pathOrID
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Lock is an advisory lock on a project file, held through a sibling
// ".lock" file.
type Lock struct {
	fl *flock.Flock
}

// Acquire takes the lock for path without blocking. It returns ErrLocked
// when another process holds it.
func Acquire(path string) (*Lock, error) {
	fl := flock.New(path + ".lock")
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return &Lock{fl: fl}, nil
}

// Release drops the lock.
func (l *Lock) Release() error {
	return l.fl.Unlock()
}
