package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// JobSpec is the decoded form of a linkage job file: the target
// dialect, the serialized comparisons, and the blocking rule inputs.
type JobSpec struct {
	Dialect       string
	Comparisons   []map[string]any
	BlockingRules []any
}

// LoadError reports a problem reading or decoding a job file.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadJob reads a job spec from a CUE, YAML or JSON file, dispatching
// on the file extension.
func LoadJob(path string) (*JobSpec, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("job file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error reading job file: %v", err)}
	}

	var raw map[string]any
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".cue":
		raw, err = decodeCUE(data, path)
	case ".yaml", ".yml", ".json":
		err = yaml.Unmarshal(data, &raw)
		if err != nil {
			err = &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("decoding %s: %v", path, err)}
		}
	default:
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("unsupported job file extension %q", ext)}
	}
	if err != nil {
		return nil, err
	}

	return specFromRaw(raw)
}

func decodeCUE(data []byte, path string) (map[string]any, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}
	var raw map[string]any
	if err := value.Decode(&raw); err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("decoding CUE value: %v", err)}
	}
	return raw, nil
}

func specFromRaw(raw map[string]any) (*JobSpec, error) {
	spec := &JobSpec{}

	d, ok := raw["dialect"]
	if !ok {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: `job spec is missing the "dialect" key`}
	}
	dialect, ok := d.(string)
	if !ok {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf(`"dialect" must be a string, got %T`, d)}
	}
	spec.Dialect = dialect

	if c, ok := raw["comparisons"]; ok {
		entries, ok := c.([]any)
		if !ok {
			return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf(`"comparisons" must be a list, got %T`, c)}
		}
		for i, entry := range entries {
			m, ok := entry.(map[string]any)
			if !ok {
				return nil, &LoadError{Code: ErrCodeParseFailed,
					Message: fmt.Sprintf("comparison %d must be a mapping, got %T", i, entry)}
			}
			spec.Comparisons = append(spec.Comparisons, m)
		}
	}

	if b, ok := raw["blocking_rules"]; ok {
		entries, ok := b.([]any)
		if !ok {
			return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf(`"blocking_rules" must be a list, got %T`, b)}
		}
		spec.BlockingRules = entries
	}

	return spec, nil
}
