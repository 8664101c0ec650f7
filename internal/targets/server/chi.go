package server

type ChiFramework struct{}

func (f *ChiFramework) Name() string {
	return "chi"
}

func (f *ChiFramework) TemplateName() string {
	return "go/server/chi.tmpl"
}

// ConvertPath only renames wildcards; chi matches "/v1" and "/v1/" as
// distinct routes already.
func (f *ChiFramework) ConvertPath(path string, keys []string) (string, error) {
	return renameWildcards(path, keys)
}
