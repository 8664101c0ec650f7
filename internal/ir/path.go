package ir

import "strings"

// NormalizePath replaces every template parameter with "{}" so that
// "/users/{id}" and "/users/{name}" compare equal.
func NormalizePath(path string) string {
	var b strings.Builder
	b.Grow(len(path))
	for {
		open := strings.IndexByte(path, '{')
		if open < 0 {
			break
		}
		end := strings.IndexByte(path[open:], '}')
		if end < 0 {
			break
		}
		b.WriteString(path[:open])
		b.WriteString("{}")
		path = path[open+end+1:]
	}
	b.WriteString(path)
	return b.String()
}

// PathParams lists the template parameter names of path in order.
func PathParams(path string) []string {
	var names []string
	for {
		open := strings.IndexByte(path, '{')
		if open < 0 {
			return names
		}
		end := strings.IndexByte(path[open:], '}')
		if end < 0 {
			return names
		}
		names = append(names, path[open+1:open+end])
		path = path[open+end+1:]
	}
}

// RouteKey identifies a route slot: method plus normalized path.
func RouteKey(method Method, path string) string {
	return string(method) + " " + NormalizePath(path)
}
