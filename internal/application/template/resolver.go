package template

import (
	"fmt"
	"strconv"
	"strings"
)

// Resolver traverses dot-separated paths through the variable context.
type Resolver struct {
	context *VariableContext
}

// NewResolver creates a new path resolver.
func NewResolver(ctx *VariableContext) *Resolver {
	return &Resolver{context: ctx}
}

// Resolve resolves a full path like "summary.output" or "items.0.name".
func (r *Resolver) Resolve(path string) (any, error) {
	parts := strings.Split(path, ".")
	if len(parts) == 0 || parts[0] == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	root, found := r.context.Lookup(parts[0])
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrVariableNotFound, parts[0])
	}

	return r.traverse(root, parts[1:], path)
}

// traverse walks the remaining segments. Maps are indexed by key, lists by
// non-negative integer; anything else fails the resolution.
func (r *Resolver) traverse(value any, parts []string, fullPath string) (any, error) {
	current := value

	for _, part := range parts {
		switch v := current.(type) {
		case map[string]any:
			next, ok := v[part]
			if !ok {
				return nil, fmt.Errorf("%w: %s has no key %q", ErrInvalidPath, fullPath, part)
			}
			current = next

		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("%w: %q is not a list index", ErrInvalidPath, part)
			}
			if idx >= len(v) {
				return nil, fmt.Errorf("%w: index %d out of range (len %d)", ErrInvalidPath, idx, len(v))
			}
			current = v[idx]

		default:
			return nil, fmt.Errorf("%w: cannot descend into %T with %q", ErrInvalidPath, current, part)
		}
	}

	return current, nil
}
