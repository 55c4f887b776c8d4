// Package naming holds filename helpers shared by the rule engine, the date
// resolver and the conflict resolver.
package naming

import "strings"

// Split separates name into base and extension. The extension includes the
// leading dot. A name whose only dot is the first character (".bashrc") has
// no extension.
func Split(name string) (base, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return name, ""
	}
	return name[:i], name[i:]
}

// WithSuffix inserts suffix between the base name and the extension.
func WithSuffix(name, suffix string) string {
	base, ext := Split(name)
	return base + suffix + ext
}
