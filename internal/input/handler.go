// Package input collects the sources a review runs over from files,
// directories and standard input.
package input

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/chris-regnier/quill/internal/lang"
)

// StdinName is the path reported for source read from standard input.
const StdinName = "<stdin>"

// Source is one text to review.
type Source struct {
	Path     string
	Language lang.Language
	Content  string
}

// skippedDirs are never descended into when walking a directory.
var skippedDirs = []string{"node_modules", "vendor", "__pycache__", "build", "dist", "target"}

type Handler struct {
	language lang.Language
	logger   *slog.Logger
}

// NewHandler creates a Handler. A non-empty language overrides extension
// detection for explicitly named files and stdin.
func NewHandler(language lang.Language, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{language: language, logger: logger}
}

// ReadPaths reads every named file and walks every named directory.
func (h *Handler) ReadPaths(paths []string) ([]Source, error) {
	var sources []Source
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		var read []Source
		if info.IsDir() {
			read, err = h.ReadDirectory(p)
		} else {
			read, err = h.ReadFiles([]string{p})
		}
		if err != nil {
			return nil, err
		}
		sources = append(sources, read...)
	}
	return sources, nil
}

// ReadFiles reads the named files. A file whose language cannot be
// determined is an error; a file that is not valid UTF-8 is skipped.
func (h *Handler) ReadFiles(paths []string) ([]Source, error) {
	var sources []Source
	for _, p := range paths {
		language, err := h.languageFor(p)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(data) {
			h.logger.Warn("skipping file with invalid UTF-8", "path", p)
			continue
		}
		sources = append(sources, Source{Path: p, Language: language, Content: string(data)})
	}
	return sources, nil
}

// ReadDirectory walks dir and reads every file with a supported
// extension. Hidden directories and dependency directories are skipped.
func (h *Handler) ReadDirectory(dir string) ([]Source, error) {
	var sources []Source
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && (strings.HasPrefix(d.Name(), ".") || slices.Contains(skippedDirs, d.Name())) {
				return filepath.SkipDir
			}
			return nil
		}
		language, ok := lang.Detect(path)
		if !ok {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if !utf8.Valid(data) {
			h.logger.Warn("skipping file with invalid UTF-8", "path", path)
			return nil
		}
		sources = append(sources, Source{Path: path, Language: language, Content: string(data)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	h.logger.Debug("read directory", "dir", dir, "files", len(sources))
	return sources, nil
}

// ReadStdin reads one source from r. name, if set, is used for
// language detection and reporting.
func (h *Handler) ReadStdin(r io.Reader, name string) (Source, error) {
	if name == "" {
		name = StdinName
	}
	language, err := h.languageFor(name)
	if err != nil {
		return Source{}, fmt.Errorf("reading stdin: %w (use --lang)", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Source{}, fmt.Errorf("reading stdin: %w", err)
	}
	if !utf8.Valid(data) {
		return Source{}, errors.New("reading stdin: input is not valid UTF-8")
	}
	return Source{Path: name, Language: language, Content: string(data)}, nil
}

func (h *Handler) languageFor(path string) (lang.Language, error) {
	if h.language != "" {
		return h.language, nil
	}
	if l, ok := lang.Detect(path); ok {
		return l, nil
	}
	return "", fmt.Errorf("%w: cannot detect language of %s", lang.ErrUnsupportedLanguage, path)
}
