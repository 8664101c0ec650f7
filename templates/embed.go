// Package templates embeds the default code generation templates. Any of
// them can be overridden from a custom templates directory.
package templates

import "embed"

//go:embed go static
var FS embed.FS
