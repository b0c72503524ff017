package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// formatValue renders a resolved value for terminal output. Tables are
// printed as compact JSON and multi-line strings are quoted.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		if strings.ContainsAny(val, "\n\t") {
			return strconv.Quote(val)
		}
		return val
	case map[string]any, []any:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	default:
		return fmt.Sprint(val)
	}
}
