package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joseph-ayodele/contracts-checker/internal/entity"
)

// rawTree is a path-addressed document built by both extraction modes and
// decoded into entity.RawContract. Keys follow the record's JSON names.
type rawTree map[string]any

// set writes value at a dotted path. A non-nil index addresses a slot of
// the array stored at path, growing it as needed.
func (t rawTree) set(path string, index *int, value string) {
	parts := strings.Split(path, ".")
	node := map[string]any(t)
	for _, p := range parts[:len(parts)-1] {
		child, ok := node[p].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[p] = child
		}
		node = child
	}
	leaf := parts[len(parts)-1]
	if index == nil {
		node[leaf] = value
		return
	}
	arr, _ := node[leaf].([]any)
	for len(arr) <= *index {
		arr = append(arr, "")
	}
	arr[*index] = value
	node[leaf] = arr
}

// has reports whether a scalar path (or any slot of an array path) was written.
func (t rawTree) has(path string) bool {
	parts := strings.Split(path, ".")
	var cur any = map[string]any(t)
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return false
		}
		cur, ok = m[p]
		if !ok {
			return false
		}
	}
	return true
}

// blank reports whether a scalar path is unset or holds only whitespace.
func (t rawTree) blank(path string) bool {
	parts := strings.Split(path, ".")
	var cur any = map[string]any(t)
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return true
		}
		if cur, ok = m[p]; !ok {
			return true
		}
	}
	s, ok := cur.(string)
	return !ok || strings.TrimSpace(s) == ""
}

func (t rawTree) decode() (entity.RawContract, error) {
	var rc entity.RawContract
	b, err := json.Marshal(t)
	if err != nil {
		return rc, fmt.Errorf("marshal raw tree: %w", err)
	}
	if err := json.Unmarshal(b, &rc); err != nil {
		return rc, fmt.Errorf("decode raw tree: %w", err)
	}
	return rc, nil
}
