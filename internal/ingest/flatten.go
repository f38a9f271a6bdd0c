package ingest

import (
	"encoding/json"
	"fmt"
)

// FlattenJSON flattens a nested JSON object into a single-level map whose
// keys join the nesting path with "_". Lists of objects expand into
// indexed keys ("tanks_0_capacity"); scalar lists are kept as one cell of
// JSON text; empty lists flatten to nil.
func FlattenJSON(nested map[string]any) map[string]any {
	flat := make(map[string]any)
	flattenInto(flat, "", nested)
	return flat
}

func flattenInto(flat map[string]any, parent string, nested map[string]any) {
	for key, value := range nested {
		newKey := key
		if parent != "" {
			newKey = parent + "_" + key
		}

		switch v := value.(type) {
		case map[string]any:
			flattenInto(flat, newKey, v)
		case []any:
			flattenList(flat, newKey, v)
		default:
			flat[newKey] = value
		}
	}
}

func flattenList(flat map[string]any, key string, list []any) {
	if len(list) == 0 {
		flat[key] = nil
		return
	}

	if _, ok := list[0].(map[string]any); ok {
		for idx, item := range list {
			indexed := fmt.Sprintf("%s_%d", key, idx)
			if obj, ok := item.(map[string]any); ok {
				flattenInto(flat, indexed, obj)
			} else {
				flat[indexed] = item
			}
		}
		return
	}

	// Scalar list: preserve it verbatim as JSON text so no element is lost.
	encoded, err := json.Marshal(list)
	if err != nil {
		flat[key] = fmt.Sprintf("%v", list)
		return
	}
	flat[key] = string(encoded)
}
