// Package include follows #include directives from a root unit and builds
// the translation graph.
package include

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// SourceID identifies a resolved source. For the filesystem provider it is
// the slash-separated path of the file inside the provider's fs.FS.
type SourceID string

// Provider resolves include paths and loads source text. Resolution and
// loading are synchronous from the resolver's point of view.
type Provider interface {
	// Resolve maps an include path written in unit from to a source.
	Resolve(includePath string, system bool, from SourceID) (SourceID, bool)
	// Load returns the text of a resolved source.
	Load(id SourceID) (string, error)
}

// FSProvider resolves includes against an fs.FS the way cpp does:
// quoted paths are looked up next to the including file, then in
// QuoteDirs, then in SystemDirs; angle-bracket paths only in SystemDirs.
type FSProvider struct {
	FS         fs.FS
	QuoteDirs  []string
	SystemDirs []string
}

// NewOSProvider returns an FSProvider over the host filesystem. Directory
// arguments may be relative to the working directory.
func NewOSProvider(quoteDirs, systemDirs []string) (*FSProvider, error) {
	q, err := fsDirs(quoteDirs)
	if err != nil {
		return nil, err
	}
	s, err := fsDirs(systemDirs)
	if err != nil {
		return nil, err
	}
	return &FSProvider{FS: os.DirFS("/"), QuoteDirs: q, SystemDirs: s}, nil
}

// OSSourceID converts a host file path into the SourceID used by the
// provider returned from NewOSProvider.
func OSSourceID(file string) (SourceID, error) {
	p, err := fsPath(file)
	return SourceID(p), err
}

func fsDirs(dirs []string) ([]string, error) {
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		p, err := fsPath(d)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func fsPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", p, err)
	}
	rel := strings.TrimPrefix(filepath.ToSlash(abs), "/")
	if rel == "" {
		rel = "."
	}
	return rel, nil
}

// Resolve implements Provider.
func (p *FSProvider) Resolve(includePath string, system bool, from SourceID) (SourceID, bool) {
	if strings.HasPrefix(includePath, "/") {
		return p.probe(".", includePath)
	}
	var dirs []string
	if !system {
		dirs = append(dirs, path.Dir(string(from)))
		dirs = append(dirs, p.QuoteDirs...)
	}
	dirs = append(dirs, p.SystemDirs...)
	for _, dir := range dirs {
		if id, ok := p.probe(dir, includePath); ok {
			return id, true
		}
	}
	return "", false
}

func (p *FSProvider) probe(dir, includePath string) (SourceID, bool) {
	name := path.Clean(path.Join(dir, strings.TrimPrefix(includePath, "/")))
	if !fs.ValidPath(name) {
		return "", false
	}
	info, err := fs.Stat(p.FS, name)
	if err != nil || info.IsDir() {
		return "", false
	}
	return SourceID(name), true
}

// Load implements Provider.
func (p *FSProvider) Load(id SourceID) (string, error) {
	b, err := fs.ReadFile(p.FS, string(id))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", id, err)
	}
	return string(b), nil
}
