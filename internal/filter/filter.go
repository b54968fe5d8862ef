package filter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmespath/go-jmespath"
	"github.com/sahilm/fuzzy"
	"github.com/studiowebux/kycfill/internal/types"
)

// Apply evaluates a JMESPath query against a JSON payload
// (e.g. forms[].form_id or profile.name). An empty query returns the body unchanged.
func Apply(body string, query string) (string, error) {
	if query == "" {
		return body, nil
	}

	queried, err := applyJMESPath(body, query)
	if err != nil {
		return "", fmt.Errorf("failed to apply query: %w", err)
	}
	return queried, nil
}

// applyJMESPath applies a JMESPath expression to a JSON string
func applyJMESPath(jsonStr string, expression string) (string, error) {
	var data interface{}
	if err := json.Unmarshal([]byte(jsonStr), &data); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}

	jp, err := jmespath.Compile(expression)
	if err != nil {
		return "", fmt.Errorf("invalid JMESPath expression '%s': %w", expression, err)
	}

	result, err := jp.Search(data)
	if err != nil {
		return "", fmt.Errorf("JMESPath search failed: %w", err)
	}

	if result == nil {
		return "null", nil
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}

	return string(output), nil
}

// IsValidJMESPath checks if an expression is valid JMESPath syntax
func IsValidJMESPath(expression string) bool {
	_, err := jmespath.Compile(expression)
	return err == nil
}

// ListDocuments returns the files under dir whose extension is in exts,
// sorted by path. Hidden directories are skipped.
func ListDocuments(dir string, exts []string) ([]types.FileInfo, error) {
	allowed := make(map[string]bool, len(exts))
	for _, ext := range exts {
		allowed[strings.ToLower(ext)] = true
	}

	var files []types.FileInfo
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if len(allowed) > 0 && !allowed[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		files = append(files, types.FileInfo{
			Path:         path,
			Name:         rel,
			Size:         info.Size(),
			ModifiedTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list documents in %s: %w", dir, err)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files, nil
}

// fileSource adapts a file list to fuzzy.Source
type fileSource []types.FileInfo

func (s fileSource) String(i int) string { return s[i].Name }
func (s fileSource) Len() int            { return len(s) }

// FuzzyFiles returns the files matching pattern, best match first.
// An empty pattern returns all files in their original order.
func FuzzyFiles(files []types.FileInfo, pattern string) []types.FileInfo {
	if pattern == "" {
		return files
	}

	matches := fuzzy.FindFrom(pattern, fileSource(files))
	out := make([]types.FileInfo, 0, len(matches))
	for _, match := range matches {
		out = append(out, files[match.Index])
	}
	return out
}
