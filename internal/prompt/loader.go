// Package prompt loads stage instruction templates from delimited text
// resources and renders {{ key }} placeholders.
package prompt

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	gocache "github.com/patrickmn/go-cache"

	"rednote/internal/domain"
)

// Pair is one loaded template split into its system and user segments.
type Pair struct {
	System string
	User   string
}

// Loader reads prompt resources by logical name relative to a base
// directory and caches successfully parsed pairs for the process lifetime.
// The cache is an explicit object owned by the Loader, not package state.
type Loader struct {
	dir   string
	cache *gocache.Cache
}

// NewLoader constructs a Loader rooted at dir ("." means the process
// working directory).
func NewLoader(dir string) *Loader {
	if dir == "" {
		dir = "."
	}
	return &Loader{
		dir:   dir,
		cache: gocache.New(gocache.NoExpiration, gocache.NoExpiration),
	}
}

// LoadPair loads the resource identified by name (e.g. "prompt2", resolved
// to "<dir>/prompt2.md"). A resource missing either delimited block is a
// fatal configuration error; a resource file that does not exist at all is
// reported with fs.ErrNotExist wrapped in, so callers may substitute a
// built-in default.
func (l *Loader) LoadPair(name string) (Pair, error) {
	if cached, ok := l.cache.Get(name); ok {
		return cached.(Pair), nil
	}

	path := filepath.Join(l.dir, name)
	if filepath.Ext(path) == "" {
		path += ".md"
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Pair{}, fmt.Errorf("%w: prompt resource %q: %w", domain.ErrConfiguration, name, fs.ErrNotExist)
		}
		return Pair{}, fmt.Errorf("%w: prompt resource %q: %v", domain.ErrConfiguration, name, err)
	}

	pair, err := parsePair(name, string(raw))
	if err != nil {
		return Pair{}, err
	}
	// Concurrent first loads may race here; the parsed value is
	// deterministic so overwriting is harmless.
	l.cache.Set(name, pair, gocache.NoExpiration)
	return pair, nil
}

const (
	systemOpen  = "<<<SYSTEM>>>"
	systemClose = "<<<END_SYSTEM>>>"
	userOpen    = "<<<USER>>>"
	userClose   = "<<<END_USER>>>"
)

func parsePair(name, raw string) (Pair, error) {
	system, ok := between(raw, systemOpen, systemClose)
	if !ok {
		return Pair{}, fmt.Errorf("%w: prompt resource %q is missing the %s block", domain.ErrConfiguration, name, systemOpen)
	}
	user, ok := between(raw, userOpen, userClose)
	if !ok {
		return Pair{}, fmt.Errorf("%w: prompt resource %q is missing the %s block", domain.ErrConfiguration, name, userOpen)
	}
	return Pair{
		System: cleanBlock(system, "System_Prompt="),
		User:   cleanBlock(user, "User_Prompt="),
	}, nil
}

func between(raw, open, close string) (string, bool) {
	start := strings.Index(raw, open)
	if start < 0 {
		return "", false
	}
	rest := raw[start+len(open):]
	end := strings.Index(rest, close)
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

// cleanBlock tolerates authoring variance in the template files: an
// assignment-style prefix and wrapping backticks are both optional.
func cleanBlock(block, prefix string) string {
	s := strings.TrimSpace(block)
	s = strings.TrimPrefix(s, prefix)
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") && strings.HasSuffix(s, "```") && len(s) >= 6 {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	} else {
		s = strings.Trim(s, "`")
	}
	return strings.TrimSpace(s)
}

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.-]+)\s*\}\}`)

// Render substitutes {{ key }} placeholders with the supplied values.
// Unmatched placeholders are left verbatim: they are treated as intentional
// literal text, not an error.
func Render(tpl string, vars map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(tpl, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]
		if v, ok := vars[key]; ok {
			return v
		}
		return match
	})
}
