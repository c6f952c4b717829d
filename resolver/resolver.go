package resolver

import (
	"fmt"
	"net/url"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yaoapp/kun/log"
	"github.com/yaoapp/ssr/application"
	"github.com/yaoapp/ssr/runtime"
)

const minified = ".min"

// New create a new resolver
func New(app application.Application, option Option) *Resolver {
	if option.SearchDepth <= 0 {
		option.SearchDepth = 3
	}

	if option.MinimumFileSize <= 0 {
		option.MinimumFileSize = 10
	}

	if option.Base == "" {
		option.Base = app.Root()
	}

	return &Resolver{app: app, option: option}
}

// Resolve search a script with the configured depth
func (r *Resolver) Resolve(name string) (string, error) {
	return r.Search(name, r.option.SearchDepth, Scripts)
}

// Find search a file accepted by the filter with the configured depth
func (r *Resolver) Find(name string, filter Filter) (string, error) {
	return r.Search(name, r.option.SearchDepth, filter)
}

// Search locate the file matching the name. An existing file is returned
// directly, otherwise the files starting with the name stem are searched in
// the name folder (or the base folder) and then in its parents, up to depth
// levels. Among the matches the name closest in length to the query wins,
// an unrequested minified variant pays the length of the ".min" suffix.
func (r *Resolver) Search(name string, depth int, filter Filter) (string, error) {

	if name == "" {
		return "", fmt.Errorf("[Resolver] empty name %w", runtime.ErrResolution)
	}

	if path, ok := r.exact(name); ok {
		return path, nil
	}

	if depth <= 0 {
		depth = 1
	}

	base := filepath.Base(name)
	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
	requested := isMinified(base)

	dir := filepath.Dir(name)
	if dir == "." {
		dir = r.option.Base
	}

	dir, err := r.app.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("[Resolver] %s %s %w", name, err.Error(), runtime.ErrResolution)
	}

	for i := 0; i < depth; i++ {
		candidates := r.candidates(dir, stem, ext, requested, filter)
		if len(candidates) > 0 {
			sort.SliceStable(candidates, func(i, j int) bool {
				if candidates[i].score != candidates[j].score {
					return candidates[i].score < candidates[j].score
				}
				if candidates[i].minified != candidates[j].minified {
					return candidates[i].minified
				}
				return candidates[i].path < candidates[j].path
			})
			log.Trace("[Resolver] %s => %s", name, candidates[0].path)
			return candidates[0].path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("[Resolver] %s %w", name, runtime.ErrResolution)
}

func (r *Resolver) exact(name string) (string, bool) {
	info, err := r.app.Stat(name)
	if err != nil || info.IsDir() || info.Size() <= r.option.MinimumFileSize {
		return "", false
	}

	path, err := r.app.Abs(name)
	if err != nil {
		return "", false
	}
	return path, true
}

func (r *Resolver) candidates(dir, stem, ext string, requested bool, filter Filter) []candidate {
	candidates := []candidate{}
	target := len(stem) + len(ext)
	err := r.app.Walk(dir, func(root, file string, isdir bool) error {
		if isdir {
			return nil
		}

		base := strings.ToLower(filepath.Base(file))
		if !strings.HasPrefix(base, stem) {
			return nil
		}

		if ext != "" && !strings.HasSuffix(base, ext) {
			return nil
		}

		if filter != nil && !filter(file) {
			return nil
		}

		info, err := r.app.Stat(file)
		if err != nil || info.Size() <= r.option.MinimumFileSize {
			return nil
		}

		score := len(base) - target
		if score < 0 {
			score = -score
		}

		isMin := isMinified(base)
		if isMin && !requested {
			score += len(minified)
		}

		candidates = append(candidates, candidate{path: file, score: score, minified: isMin})
		return nil
	})

	if err != nil {
		log.Trace("[Resolver] walk %s %s", dir, err.Error())
	}
	return candidates
}

// isMinified check if a dot separated part of the file name is "min", like react.min.js
func isMinified(name string) bool {
	parts := strings.Split(strings.ToLower(name), ".")
	for _, part := range parts[1:] {
		if part == strings.TrimPrefix(minified, ".") {
			return true
		}
	}
	return false
}

// Scripts accept the script files
func Scripts(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".jsx", ".ts", ".tsx", ".mjs":
		return true
	}
	return false
}

// Styles accept the style sheets
func Styles(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".css"
}

// Any accept all the files
func Any(path string) bool {
	return true
}

// IsURL check if the name is a http(s) url
func IsURL(name string) bool {
	u, err := url.Parse(name)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
