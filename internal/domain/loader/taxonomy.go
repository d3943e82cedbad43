package loader

import (
	"path/filepath"
	"strings"
)

// CategorySuffix marks category files in plugin directories.
const CategorySuffix = ".cat"

const (
	categoryPrefix    = "vamp:"
	categoryDelimiter = "::"
	categorySeparator = " > "
)

// CategoryEntry is one parsed category line.
type CategoryEntry struct {
	Key       PluginKey
	Hierarchy []string
}

// ParseCategories reads category lines of the form
//
//	vamp:<library>:<identifier>::<category> > <subcategory> > ...
//
// Lines that do not match are skipped. An empty right-hand side records an
// empty hierarchy.
func ParseCategories(data []byte) []CategoryEntry {
	var out []CategoryEntry
	for _, line := range strings.Split(string(data), "\n") {
		if entry, ok := parseCategoryLine(line); ok {
			out = append(out, entry)
		}
	}
	return out
}

func parseCategoryLine(line string) (CategoryEntry, bool) {
	line = strings.TrimRight(line, "\r")

	rest, ok := strings.CutPrefix(line, categoryPrefix)
	if !ok {
		return CategoryEntry{}, false
	}
	id, cats, ok := strings.Cut(rest, categoryDelimiter)
	if !ok {
		return CategoryEntry{}, false
	}
	key, err := ParsePluginKey(id)
	if err != nil {
		return CategoryEntry{}, false
	}

	hierarchy := []string{}
	if cats != "" {
		hierarchy = strings.Split(cats, categorySeparator)
	}
	return CategoryEntry{Key: key, Hierarchy: hierarchy}, true
}

// categoryDirs returns the directories searched for category files: the
// search path itself, then for each entry containing a lib directory the
// matching share directory.
func categoryDirs(searchPath []string) []string {
	dirs := append([]string(nil), searchPath...)
	for _, dir := range searchPath {
		if share, ok := shareSibling(dir); ok {
			dirs = append(dirs, share)
		}
	}
	return dedupe(dirs)
}

func shareSibling(dir string) (string, bool) {
	slashed := filepath.ToSlash(dir)
	if !strings.HasSuffix(slashed, "/") {
		slashed += "/"
	}
	i := strings.Index(slashed, "/lib/")
	if i < 0 {
		return "", false
	}
	share := slashed[:i] + "/share/" + slashed[i+len("/lib/"):]
	return filepath.Clean(filepath.FromSlash(share)), true
}
