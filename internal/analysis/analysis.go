// Package analysis reads analyzer output: one JSON document per line, each
// holding the candidate analyses of every token of every sentence.
package analysis

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/cognicore/keyphrase/internal/logger"
	"github.com/cognicore/keyphrase/pkg/keyphrase"
)

// maxLine bounds one JSONL record.
const maxLine = 16 << 20

// LoadFromJSONL loads documents from a JSONL file. Malformed lines are
// logged and skipped.
func LoadFromJSONL(path string, l *log.Logger) ([]keyphrase.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	defer f.Close()

	return ReadJSONL(f, path, l)
}

// ReadJSONL reads documents from r; name labels warnings and errors.
func ReadJSONL(r io.Reader, name string, l *log.Logger) ([]keyphrase.Document, error) {
	if l == nil {
		l = logger.Discard()
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)

	var docs []keyphrase.Document
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var doc keyphrase.Document
		if err := json.Unmarshal([]byte(line), &doc); err != nil {
			l.Warn("skipping malformed JSON", "line", lineNum, "file", name, "err", err)
			continue
		}
		if err := doc.Validate(); err != nil {
			l.Warn("skipping invalid document", "line", lineNum, "file", name, "err", err)
			continue
		}
		if doc.Source == "" {
			doc.Source = fmt.Sprintf("%s:%d", name, lineNum)
		}
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("no valid documents found in %s", name)
	}
	return docs, nil
}
