package runtime

import (
	"strconv"
	"strings"
)

// Cast interprets raw text permissively: the literals true, false and null, then
// anything that parses as a number; everything else stays a string.
func Cast(text string) Value {
	switch text {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	case "null":
		return Null
	}
	trimmed := strings.TrimSpace(text)
	if trimmed != "" {
		if f, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, "_", ""), 64); err == nil {
			return Number(f)
		}
	}
	return String(text)
}
