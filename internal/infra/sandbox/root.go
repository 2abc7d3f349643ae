// Package sandbox confines all file-oriented operations to a single base
// directory. Every path handed to a tool or resource handler is resolved
// through Root so that nothing escapes the sandbox.
package sandbox

import (
	"os"
	"path/filepath"
	"strings"

	"mcpdev/internal/domain"
)

type Root struct {
	dir string
}

// NewRoot resolves dir to an absolute, symlink-free path and creates it if
// missing. Keeping the root in resolved form lets the containment checks
// compare against resolved candidate paths.
func NewRoot(dir string) (Root, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Root{}, domain.E(domain.CodeInvalidArgument, "sandbox", "resolve root", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return Root{}, domain.E(domain.CodeInternal, "sandbox", "create root", err)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return Root{}, domain.E(domain.CodeInternal, "sandbox", "resolve root", err)
	}
	return Root{dir: real}, nil
}

func (r Root) Dir() string {
	return r.dir
}

// Resolve joins rel onto the root and rejects any result that would land
// outside it. Absolute inputs, ".." traversal, and symlinks whose target
// lies outside the root are all refused.
func (r Root) Resolve(rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", domain.E(domain.CodePermissionDenied, "sandbox", "absolute path not allowed: "+rel, domain.ErrPathEscapesRoot)
	}
	joined := filepath.Join(r.dir, rel)
	if !r.Within(joined) || !r.WithinReal(joined) {
		return "", domain.E(domain.CodePermissionDenied, "sandbox", "path escapes sandbox root: "+rel, domain.ErrPathEscapesRoot)
	}
	return joined, nil
}

// Within reports whether the absolute path abs is the root itself or lies
// underneath it. The check is lexical; pair with WithinReal when abs may
// contain symlinks.
func (r Root) Within(abs string) bool {
	cleaned := filepath.Clean(abs)
	if cleaned == r.dir {
		return true
	}
	return strings.HasPrefix(cleaned, r.dir+string(filepath.Separator))
}

// WithinReal is Within after resolving symlinks in the existing part of
// abs, so a link planted inside the sandbox cannot carry an operation past
// the prefix check.
func (r Root) WithinReal(abs string) bool {
	resolved, err := resolveExisting(filepath.Clean(abs))
	if err != nil {
		return false
	}
	return r.Within(resolved)
}

// resolveExisting evaluates symlinks over the longest existing prefix of
// path and joins the missing remainder back on. A dangling symlink at any
// component is an error: creating through it would follow the link.
func resolveExisting(path string) (string, error) {
	suffix := ""
	for {
		real, err := filepath.EvalSymlinks(path)
		if err == nil {
			return filepath.Join(real, suffix), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		if _, lerr := os.Lstat(path); lerr == nil {
			return "", err
		}
		parent := filepath.Dir(path)
		if parent == path {
			return "", err
		}
		suffix = filepath.Join(filepath.Base(path), suffix)
		path = parent
	}
}
