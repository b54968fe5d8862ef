package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/studiowebux/kycfill/internal/types"
	"github.com/tidwall/jsonc"
)

// Render prints a saved generation result. Comments and trailing commas are allowed.
func (r *Runner) Render(path string, out OutputOptions) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read result file: %w", err)
	}

	result, err := ParseResult(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	output, err := r.formatResult(result, out)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return r.emit(output, out.SavePath)
}

// ParseResult decodes a generation result from JSON with comments
func ParseResult(data []byte) (*types.GenerationResult, error) {
	var result *types.GenerationResult
	if err := json.Unmarshal(jsonc.ToJSON(data), &result); err != nil {
		return nil, fmt.Errorf("invalid result JSON: %w", err)
	}
	return result, nil
}
