// Package lang defines the closed set of source languages quill can review.
package lang

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedLanguage is returned for any tag outside the supported set.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Language identifies one supported source language.
type Language string

const (
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	Python     Language = "python"
	Java       Language = "java"
	Go         Language = "go"
)

// All returns every supported language in display order.
func All() []Language {
	return []Language{JavaScript, TypeScript, Python, Java, Go}
}

// Parse converts a language tag into a Language. Tags are matched
// case-insensitively; a few common aliases are accepted.
func Parse(tag string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "javascript", "js":
		return JavaScript, nil
	case "typescript", "ts":
		return TypeScript, nil
	case "python", "py":
		return Python, nil
	case "java":
		return Java, nil
	case "go", "golang":
		return Go, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, tag)
	}
}

// Validate reports whether l is one of the supported languages.
func (l Language) Validate() error {
	switch l {
	case JavaScript, TypeScript, Python, Java, Go:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, string(l))
	}
}

func (l Language) String() string { return string(l) }

// Label returns the human-readable language name.
func (l Language) Label() string {
	switch l {
	case JavaScript:
		return "JavaScript"
	case TypeScript:
		return "TypeScript"
	case Python:
		return "Python"
	case Java:
		return "Java"
	case Go:
		return "Go"
	default:
		return string(l)
	}
}

// Extension returns the canonical file extension, including the dot.
func (l Language) Extension() string {
	switch l {
	case JavaScript:
		return ".js"
	case TypeScript:
		return ".ts"
	case Python:
		return ".py"
	case Java:
		return ".java"
	case Go:
		return ".go"
	default:
		return ""
	}
}

var extToLang = map[string]Language{
	".js":   JavaScript,
	".mjs":  JavaScript,
	".cjs":  JavaScript,
	".jsx":  JavaScript,
	".ts":   TypeScript,
	".tsx":  TypeScript,
	".py":   Python,
	".java": Java,
	".go":   Go,
}

// Detect returns the language for a file path based on its extension,
// and whether the extension was recognized.
func Detect(path string) (Language, bool) {
	l, ok := extToLang[strings.ToLower(filepath.Ext(path))]
	return l, ok
}
