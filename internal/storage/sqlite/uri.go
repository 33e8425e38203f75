package sqlite

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// URI returns a file: URI for the database at path carrying query. The path
// is made absolute and escaped, so '?', '#' and '%' in file names stay part
// of the name instead of being read as URI syntax.
func URI(path, query string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve database path: %w", err)
	}
	p := filepath.ToSlash(abs)
	// Windows drive paths need a leading slash to leave the authority empty.
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p, RawQuery: query}
	return u.String(), nil
}
