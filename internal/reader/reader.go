package reader

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"docchat/internal/domain"
)

// supportedExtensions maps file extensions to the format tag used in logs.
var supportedExtensions = map[string]string{
	".txt":  "txt",
	".md":   "md",
	".pdf":  "pdf",
	".docx": "docx",
	".pptx": "pptx",
}

// Supported reports whether the file's extension is in the supported set.
// The check is extension-only; no I/O happens here.
func Supported(path string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Reader produces normalized text content from input files, one strategy
// per supported format.
type Reader struct {
	logger *log.Logger
}

func New(logger *log.Logger) *Reader {
	return &Reader{logger: logger}
}

// Read dispatches on the file extension and returns the extracted text
// wrapped as a Document tagged with its source path.
func (r *Reader) Read(path string) (domain.Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	format, ok := supportedExtensions[ext]
	if !ok {
		return domain.Document{}, &domain.UnsupportedFileTypeError{Path: path}
	}
	var text string
	var err error
	switch ext {
	case ".txt", ".md":
		text, err = readPlain(path)
	case ".pdf":
		text, err = readPDF(path)
	case ".docx":
		text, err = readDOCX(path)
	case ".pptx":
		text, err = readPPTX(path)
	}
	if err != nil {
		return domain.Document{}, &domain.DocumentReadError{Path: path, Err: err}
	}
	r.logger.Info("file read", "format", format, "path", path)
	return domain.Document{Text: text, Source: path}, nil
}

// readPlain returns the raw bytes as UTF-8 text verbatim. Used for both
// plain text and markdown.
func readPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
