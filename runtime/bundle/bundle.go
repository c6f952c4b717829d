package bundle

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/yaoapp/kun/log"
	"github.com/yaoapp/ssr/application"
	"github.com/yaoapp/ssr/runtime"
	"golang.org/x/crypto/blake2b"
)

// New create an empty bundle. A nil loader reads the raw file content.
func New(name string, app application.Application, loader Loader) *Bundle {
	b := &Bundle{
		name:   name,
		app:    app,
		loader: loader,
		files:  []*ScriptFile{},
		hooks:  map[int]func(){},
	}
	if b.loader == nil {
		b.loader = b.read
	}
	b.hash = Hash("")
	return b
}

// Name the bundle name
func (b *Bundle) Name() string {
	return b.name
}

// Text the concatenated text of the members
func (b *Bundle) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text
}

// Hash the hash of the concatenated text
func (b *Bundle) Hash() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.hash
}

// Snapshot the text and its hash, read together
func (b *Bundle) Snapshot() (string, string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text, b.hash
}

// Len the number of the members
func (b *Bundle) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.files)
}

// Has check if the file is a member
func (b *Bundle) Has(path string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.indexOf(path) >= 0
}

// File the member with the path, nil if it is not a member
func (b *Bundle) File(path string) *ScriptFile {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if idx := b.indexOf(path); idx >= 0 {
		return b.files[idx]
	}
	return nil
}

// Paths the member paths in order
func (b *Bundle) Paths() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	paths := make([]string, 0, len(b.files))
	for _, file := range b.files {
		paths = append(paths, file.Path)
	}
	return paths
}

// Files a snapshot of the members in order
func (b *Bundle) Files() []ScriptFile {
	b.mu.RLock()
	defer b.mu.RUnlock()
	files := make([]ScriptFile, 0, len(b.files))
	for _, file := range b.files {
		files = append(files, *file)
	}
	return files
}

// Add append the file, a path already present is skipped
func (b *Bundle) Add(file *ScriptFile) bool {
	b.mu.Lock()
	if b.indexOf(file.Path) >= 0 {
		b.mu.Unlock()
		return false
	}
	b.files = append(b.files, file)
	b.build()
	b.mu.Unlock()

	b.fire()
	return true
}

// Load read the file with the bundle loader and append it
func (b *Bundle) Load(path string) (*ScriptFile, error) {
	file := &ScriptFile{Path: path, Transformable: runtime.Transformable(path)}
	err := b.loader(file)
	if err != nil {
		return nil, fmt.Errorf("[Bundle] %s %s", b.name, err.Error())
	}
	b.Add(file)
	return file, nil
}

// Remove the file from the bundle
func (b *Bundle) Remove(path string) bool {
	b.mu.Lock()
	idx := b.indexOf(path)
	if idx < 0 {
		b.mu.Unlock()
		return false
	}
	b.files = append(b.files[:idx], b.files[idx+1:]...)
	b.build()
	b.mu.Unlock()

	b.fire()
	return true
}

// OnRebuild register a hook called after the text changed, returns the function
// removing the hook
func (b *Bundle) OnRebuild(hook func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.hooks[id] = hook
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.hooks, id)
	}
}

// Refresh stat the members, drop the missing files and reload the files whose
// size changed. Returns true if the text changed. Concurrent calls are serialised.
func (b *Bundle) Refresh() (bool, error) {
	b.refresh.Lock()
	defer b.refresh.Unlock()

	b.mu.RLock()
	files := make([]ScriptFile, 0, len(b.files))
	for _, file := range b.files {
		files = append(files, ScriptFile{Path: file.Path, Size: file.Size, Transformable: file.Transformable})
	}
	b.mu.RUnlock()

	removed := map[string]bool{}
	reloaded := map[string]*ScriptFile{}
	errs := []string{}

	for _, file := range files {
		info, err := b.app.Stat(file.Path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				log.Info("[Bundle] %s %s was removed", b.name, file.Path)
				removed[file.Path] = true
				continue
			}
			errs = append(errs, err.Error())
			continue
		}

		if info.Size() == file.Size {
			continue
		}

		next := &ScriptFile{Path: file.Path, Transformable: file.Transformable}
		err = b.loader(next)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				removed[file.Path] = true
				continue
			}
			errs = append(errs, err.Error())
			continue
		}
		log.Info("[Bundle] %s %s was reloaded (%d -> %d bytes)", b.name, file.Path, file.Size, next.Size)
		reloaded[file.Path] = next
	}

	changed := len(removed) > 0 || len(reloaded) > 0
	if changed {
		b.mu.Lock()
		members := make([]*ScriptFile, 0, len(b.files))
		for _, file := range b.files {
			if removed[file.Path] {
				continue
			}
			if next, has := reloaded[file.Path]; has {
				file = next
			}
			members = append(members, file)
		}
		b.files = members
		b.build()
		b.mu.Unlock()
		b.fire()
	}

	if len(errs) > 0 {
		return changed, fmt.Errorf("[Bundle] %s %w: %s", b.name, runtime.ErrWatchIO, strings.Join(errs, "; "))
	}
	return changed, nil
}

// Text the transformed text if any, otherwise the raw source
func (file *ScriptFile) Text() string {
	if file.Transformed != "" {
		return file.Transformed
	}
	return file.Source
}

// Hash the hex BLAKE2b-256 digest of the text
func Hash(text string) string {
	sum := blake2b.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// build the text and the hash, the caller must hold the write lock
func (b *Bundle) build() {
	texts := make([]string, 0, len(b.files))
	for _, file := range b.files {
		texts = append(texts, file.Text())
	}
	b.text = strings.Join(texts, Separator)
	b.hash = Hash(b.text)
}

func (b *Bundle) fire() {
	b.mu.RLock()
	hooks := make([]func(), 0, len(b.hooks))
	for _, hook := range b.hooks {
		hooks = append(hooks, hook)
	}
	b.mu.RUnlock()

	for _, hook := range hooks {
		hook()
	}
}

func (b *Bundle) indexOf(path string) int {
	for i, file := range b.files {
		if file.Path == path {
			return i
		}
	}
	return -1
}

func (b *Bundle) read(file *ScriptFile) error {
	source, err := b.app.Read(file.Path)
	if err != nil {
		return err
	}
	file.Source = string(source)
	file.Size = int64(len(source))
	return nil
}
