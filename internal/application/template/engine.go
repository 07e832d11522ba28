package template

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// Engine is the main template resolution engine. It resolves templates in
// strings and recursively through structured configuration values.
type Engine struct {
	resolver *Resolver
	options  Options
}

// NewEngine creates a new template engine with the given context and options.
func NewEngine(ctx *VariableContext, opts Options) *Engine {
	return &Engine{
		resolver: NewResolver(ctx),
		options:  opts,
	}
}

// NewEngineWithDefaults creates a new template engine with default options.
func NewEngineWithDefaults(ctx *VariableContext) *Engine {
	return NewEngine(ctx, DefaultOptions())
}

// templatePattern matches placeholders whose path segments look like
// identifiers or list indices, e.g. {{summary.output}} or {{items.0.name}}.
var templatePattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z0-9_]+)*)\s*\}\}`)

// Resolve resolves all templates in the input data. String leaves are
// resolved; maps and slices are walked recursively; every other value is
// returned unchanged. Resolved values are never rescanned.
func (e *Engine) Resolve(data any) (any, error) {
	switch v := data.(type) {
	case nil:
		return nil, nil
	case string:
		return e.ResolveString(v)
	case map[string]any:
		return e.resolveMap(v)
	case []any:
		return e.resolveSlice(v)
	default:
		return data, nil
	}
}

// ResolveString resolves templates in a single string. References that
// cannot be resolved are left in place (non-strict mode).
func (e *Engine) ResolveString(template string) (string, error) {
	if template == "" {
		return template, nil
	}

	var resolveErr error
	result := templatePattern.ReplaceAllStringFunc(template, func(match string) string {
		path := templatePattern.FindStringSubmatch(match)[1]

		value, err := e.resolver.Resolve(path)
		if err != nil {
			if e.options.StrictMode && resolveErr == nil {
				resolveErr = &Error{Template: template, Path: path, Err: err}
			}
			return match
		}

		return valueToString(value)
	})

	if resolveErr != nil {
		return "", resolveErr
	}

	return result, nil
}

// ResolveConfig resolves templates in a node configuration map.
func (e *Engine) ResolveConfig(config map[string]any) (map[string]any, error) {
	resolved, err := e.resolveMap(config)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config: %w", err)
	}

	return resolved, nil
}

func (e *Engine) resolveMap(m map[string]any) (map[string]any, error) {
	result := make(map[string]any, len(m))

	for key, value := range m {
		resolved, err := e.Resolve(value)
		if err != nil {
			return nil, fmt.Errorf("error resolving key %q: %w", key, err)
		}
		result[key] = resolved
	}

	return result, nil
}

func (e *Engine) resolveSlice(s []any) ([]any, error) {
	result := make([]any, len(s))

	for i, value := range s {
		resolved, err := e.Resolve(value)
		if err != nil {
			return nil, fmt.Errorf("error resolving index %d: %w", i, err)
		}
		result[i] = resolved
	}

	return result, nil
}

// valueToString converts a resolved value to its substitution text: natural
// form for scalars, canonical JSON for maps and lists, empty string for nil.
func valueToString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		// JSON numbers arrive as float64; render integers without the
		// trailing fraction.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32:
		return fmt.Sprintf("%v", v)
	default:
		if data, err := json.Marshal(v); err == nil {
			return string(data)
		}
		return fmt.Sprintf("%v", v)
	}
}

// HasTemplates checks if a string contains any template placeholders.
func HasTemplates(s string) bool {
	return templatePattern.MatchString(s)
}

// ExtractPaths extracts all reference paths from a template string.
func ExtractPaths(template string) []string {
	matches := templatePattern.FindAllStringSubmatch(template, -1)
	paths := make([]string, 0, len(matches))

	for _, match := range matches {
		if len(match) > 1 {
			paths = append(paths, match[1])
		}
	}

	return paths
}
