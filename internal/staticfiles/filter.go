package staticfiles

import "slices"

// AdminDirectories are the asset directories of the host site's admin
// tooling. They are never needed on a public static site.
var AdminDirectories = []string{"admin", "grappelli", "unfold"}

// Filter decides which asset directories are copied and published.
type Filter struct {
	SkipAdmin bool
	Skip      []string
}

// Skips reports whether a directory with this base name is left out.
func (f Filter) Skips(name string) bool {
	if f.SkipAdmin && slices.Contains(AdminDirectories, name) {
		return true
	}
	return slices.Contains(f.Skip, name)
}
