package languages

import "github.com/morozRed/commenter/internal/element"

// NewDefaultRegistry creates a registry with all supported extractors
func NewDefaultRegistry() *element.Registry {
	r := element.NewRegistry()

	r.Register(NewTypeScriptExtractor())

	return r
}
