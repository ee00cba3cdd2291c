package syncer

import (
	"bufio"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/sabhiram/go-gitignore"
	"github.com/khoj-ai/khoj-sync/internal/client/config"
	"github.com/khoj-ai/khoj-sync/internal/utils"
)

// DefaultExtensions is the allow-list of syncable file types.
var DefaultExtensions = []string{
	"org", "md", "markdown", "pdf", "txt", "rst", "xml", "htm", "html",
	"doc", "docx", "py", "js", "css", "yaml", "yml", "sh", "json",
}

// DefaultExcludedDirs are directory names that never hold user content,
// skipped at any depth.
var DefaultExcludedDirs = []string{
	"node_modules", ".venv", ".git", ".github", ".vscode", ".catpaw", "__pycache__",
}

// reservedNames are this tool's own artifacts, never synced.
var reservedNames = map[string]bool{
	config.ConfigFileName: true,
	config.StateFileName:  true,
}

// Catalog enumerates the current universe of syncable files under a root,
// either by scanning the filesystem or by reading an explicit manifest.
type Catalog struct {
	Root         string
	Extensions   []string
	ManifestPath string

	exclude  *gitignore.GitIgnore
	patterns []string
}

func NewCatalog(root, manifestPath string) *Catalog {
	excluded := make([]string, 0, len(DefaultExcludedDirs))
	for _, dir := range DefaultExcludedDirs {
		excluded = append(excluded, dir+"/")
	}

	c := &Catalog{
		Root:         root,
		Extensions:   DefaultExtensions,
		ManifestPath: manifestPath,
		exclude:      gitignore.CompileIgnoreLines(excluded...),
	}
	for _, ext := range c.Extensions {
		c.patterns = append(c.patterns, "**/*."+ext)
	}
	return c
}

// ManifestMode reports whether the catalog is restricted to an explicit file
// list. Manifest mode disables deletion detection: absence from the list
// says nothing about the disk.
func (c *Catalog) ManifestMode() bool {
	return c.ManifestPath != ""
}

// Files returns relative, slash-normalized paths of every syncable file.
// Manifest mode preserves list order; scan order is unspecified.
func (c *Catalog) Files() ([]string, error) {
	if c.ManifestMode() {
		return c.readManifest()
	}
	return c.scan()
}

func (c *Catalog) scan() ([]string, error) {
	var files []string
	err := filepath.WalkDir(c.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(c.Root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && c.exclude.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if reservedNames[d.Name()] {
			return nil
		}
		if !c.matchesExtension(rel) {
			return nil
		}

		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (c *Catalog) matchesExtension(rel string) bool {
	for _, pattern := range c.patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// readManifest reads newline-delimited paths: blank lines and `#` comments
// are skipped, absolute paths are rewritten relative to the root (entries
// outside the root are dropped), and every entry must exist as a regular
// file under the root. A missing manifest yields an empty catalog, not an
// error.
func (c *Catalog) readManifest() ([]string, error) {
	f, err := os.Open(c.ManifestPath)
	if err != nil {
		slog.Warn("files list not found", "path", c.ManifestPath)
		return nil, nil
	}
	defer f.Close()

	var files []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		rel := line
		if filepath.IsAbs(line) {
			r, err := filepath.Rel(c.Root, line)
			if err != nil || strings.HasPrefix(r, "..") {
				slog.Warn("skipping file outside sync directory", "path", line)
				continue
			}
			rel = r
		}
		rel = filepath.ToSlash(filepath.Clean(rel))

		if !utils.FileExists(filepath.Join(c.Root, filepath.FromSlash(rel))) {
			slog.Warn("file not found", "path", rel)
			continue
		}
		files = append(files, rel)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return files, nil
}
