package server

import (
	"fmt"
	"strings"
)

type StdlibFramework struct{}

func (f *StdlibFramework) Name() string {
	return "stdlib"
}

func (f *StdlibFramework) TemplateName() string {
	return "go/server/stdlib.tmpl"
}

// ConvertPath renames wildcards to the given keys and pins paths ending in a
// slash with {$} so that they do not match a whole subtree. ServeMux only
// accepts wildcards that span a full segment.
func (f *StdlibFramework) ConvertPath(path string, keys []string) (string, error) {
	converted, err := renameWildcards(path, keys)
	if err != nil {
		return "", err
	}
	for _, seg := range strings.Split(converted, "/") {
		if strings.Contains(seg, "{") && !(strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}")) {
			return "", fmt.Errorf("path %s: the stdlib router needs parameters to span a whole segment", path)
		}
	}
	if strings.HasSuffix(converted, "/") {
		converted += "{$}"
	}
	return converted, nil
}
