// Package repository locates the project a source file belongs to, so a
// front-end can qualify the Names it hands to the flow graph consistently
// across every file of the same package.
package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/viant/afs"
	"golang.org/x/mod/modfile"
)

// Kind identifies the ecosystem a detected project root belongs to.
type Kind string

const (
	KindUnknown Kind = "unknown"
	KindGo      Kind = "go"
	KindJS      Kind = "javascript"
	KindJava    Kind = "java"
)

var markers = []struct {
	file string
	kind Kind
}{
	{"go.mod", KindGo},
	{"package.json", KindJS},
	{"pom.xml", KindJava},
	{"build.gradle", KindJava},
}

// Project describes the project root enclosing a detected file.
type Project struct {
	RootPath string
	Kind     Kind
	// ModulePath is the Go module path (from go.mod) when Kind == KindGo.
	// Empty for every other kind: qualifying Names by project identity is
	// only meaningful for Go, where the module path is part of the
	// exported identifier an importer sees.
	ModulePath string
}

// Detector walks up from a file looking for the nearest marker file.
type Detector struct {
	fs afs.Service
}

// New creates a Detector. fs defaults to afs.New() when nil. fs is used to
// read go.mod only; marker files are looked up on the local filesystem.
func New(fs afs.Service) *Detector {
	if fs == nil {
		fs = afs.New()
	}
	return &Detector{fs: fs}
}

// Detect walks up from path (a file or directory) until it finds a marker
// file, and returns the enclosing Project. A path with no marker anywhere
// above it resolves to KindUnknown rooted at its own directory.
func (d *Detector) Detect(path string) (*Project, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for %s: %w", path, err)
	}

	dir := absPath
	if info, err := os.Stat(absPath); err == nil && !info.IsDir() {
		dir = filepath.Dir(absPath)
	}

	start := dir
	for {
		for _, m := range markers {
			candidate := filepath.Join(dir, m.file)
			if _, err := os.Stat(candidate); err == nil {
				return d.buildProject(dir, candidate, m.kind)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return &Project{RootPath: start, Kind: KindUnknown}, nil
		}
		dir = parent
	}
}

func (d *Detector) buildProject(root, markerPath string, kind Kind) (*Project, error) {
	project := &Project{RootPath: root, Kind: kind}
	if kind != KindGo {
		return project, nil
	}

	modulePath, err := d.readModulePath(markerPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read module path from %s: %w", markerPath, err)
	}
	project.ModulePath = modulePath
	return project, nil
}

func (d *Detector) readModulePath(goModPath string) (string, error) {
	content, err := d.fs.DownloadWithURL(context.Background(), goModPath)
	if err != nil {
		return "", err
	}
	mod, err := modfile.Parse(goModPath, content, nil)
	if err != nil {
		return "", fmt.Errorf("failed to parse go.mod: %w", err)
	}
	return mod.Module.Mod.Path, nil
}
