package blockexec

import (
	"fmt"
	"strings"
)

// ResolveTemplates walks config recursively and substitutes every
// "{name}" placeholder in string values with vars["name"], matching the
// spec's `{name}` variable syntax (§4.4). A placeholder with no matching
// variable is left untouched so typos are visible in the output rather
// than silently dropped.
func ResolveTemplates(config map[string]interface{}, vars map[string]interface{}) map[string]interface{} {
	resolved := make(map[string]interface{}, len(config))
	for k, v := range config {
		resolved[k] = resolveValue(v, vars)
	}
	return resolved
}

func resolveValue(v interface{}, vars map[string]interface{}) interface{} {
	switch val := v.(type) {
	case string:
		return resolveString(val, vars)
	case map[string]interface{}:
		return ResolveTemplates(val, vars)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = resolveValue(item, vars)
		}
		return out
	default:
		return v
	}
}

func resolveString(s string, vars map[string]interface{}) string {
	if !strings.Contains(s, "{") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '{' {
			if end := strings.IndexByte(s[i:], '}'); end != -1 {
				name := s[i+1 : i+end]
				if val, ok := vars[name]; ok {
					b.WriteString(fmt.Sprintf("%v", val))
					i += end
					continue
				}
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
