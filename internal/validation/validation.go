package validation

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// MaxUploadBytes is the largest corpus file accepted for upload (5 MiB).
const MaxUploadBytes = 5 * 1024 * 1024

// MinQueryLength is the shortest accepted question, counted in characters after trimming.
const MinQueryLength = 3

// allowedExtensions lists the corpus formats the ingestion pipeline understands.
var allowedExtensions = map[string]struct{}{
	"jsonl": {},
	"txt":   {},
}

// Kind identifies which pre-flight rule was violated.
type Kind string

const (
	NoFileSelected       Kind = "no_file_selected"
	UnsupportedExtension Kind = "unsupported_extension"
	FileTooLarge         Kind = "file_too_large"
	EmptyQuery           Kind = "empty_query"
	QueryTooShort        Kind = "query_too_short"
)

var messages = map[Kind]string{
	NoFileSelected:       "Select a file first",
	UnsupportedExtension: "Only .jsonl and .txt files are supported",
	FileTooLarge:         "File is too large (max 5 MB)",
	EmptyQuery:           "Enter a question first",
	QueryTooShort:        "Question must be at least 3 characters",
}

// Error is returned when input fails a pre-flight check. Its message is the
// text shown to the user.
type Error struct {
	Kind Kind
}

func (e *Error) Error() string { return messages[e.Kind] }

// File is a file the user picked for upload.
type File struct {
	Path string
	Name string
	Size int64
}

// SelectFile resolves a path into a File. An empty path, a missing file or a
// directory yields nil, which ValidateUploadFile reports as NoFileSelected.
func SelectFile(path string) *File {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil
	}
	return &File{Path: path, Name: filepath.Base(path), Size: info.Size()}
}

// ValidateUploadFile checks that a file was chosen, has an accepted extension
// and fits the size ceiling.
func ValidateUploadFile(f *File) error {
	if f == nil {
		return &Error{Kind: NoFileSelected}
	}
	if !hasAllowedExtension(f.Name) {
		return &Error{Kind: UnsupportedExtension}
	}
	if f.Size > MaxUploadBytes {
		return &Error{Kind: FileTooLarge}
	}
	return nil
}

func hasAllowedExtension(name string) bool {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return false
	}
	_, ok := allowedExtensions[strings.ToLower(name[i+1:])]
	return ok
}

// ValidateQueryText trims the question and checks it is long enough to send.
func ValidateQueryText(text string) (string, error) {
	q := strings.TrimSpace(text)
	if q == "" {
		return "", &Error{Kind: EmptyQuery}
	}
	if utf8.RuneCountInString(q) < MinQueryLength {
		return "", &Error{Kind: QueryTooShort}
	}
	return q, nil
}
