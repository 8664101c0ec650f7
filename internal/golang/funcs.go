package golang

import (
	"strconv"
	"strings"
	"text/template"
)

// TemplateFuncs are the functions available to the Go templates, including
// user overrides.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"goComment": GoComment,
		"quote":     strconv.Quote,
		"join":      strings.Join,
	}
}

func GoComment(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	var result strings.Builder
	for i, line := range lines {
		if i > 0 {
			result.WriteString("\n")
		}
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			result.WriteString("//")
			continue
		}
		result.WriteString("// ")
		result.WriteString(line)
	}
	return result.String()
}
