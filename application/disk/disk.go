package disk

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/yaoapp/kun/log"
)

// Disk the local filesystem, relative names are resolved from the root
type Disk struct {
	root string
}

// Open the application
func Open(root string) (*Disk, error) {

	// with home dir
	if strings.HasPrefix(root, "~") {
		homedir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("[disk.Open] %s %s", root, err.Error())
		}
		root = homedir + strings.TrimPrefix(root, "~")
	}

	path, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("[disk.Open] %s %s", root, err.Error())
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("[disk.Open] %s %s", root, err.Error())
	}

	return &Disk{root: path}, nil
}

// Root the application root
func (disk *Disk) Root() string {
	return disk.root
}

// Abs the absolute path of the name
func (disk *Disk) Abs(name string) (string, error) {
	if filepath.IsAbs(name) {
		return filepath.Clean(name), nil
	}
	return filepath.Abs(filepath.Join(disk.root, name))
}

// Walk traverse the folders, the handler receives the file names joined
// with the given root. Hidden files and folders are skipped.
func (disk *Disk) Walk(root string, handler func(root, file string, isdir bool) error, patterns ...string) error {
	rootAbs, err := disk.Abs(root)
	if err != nil {
		return err
	}

	return filepath.Walk(rootAbs, func(filename string, info os.FileInfo, err error) error {
		if err != nil {
			log.Trace("[disk.Walk] %s %s", filename, err.Error())
			if filename == rootAbs {
				return err
			}
			return nil
		}

		isdir := info.IsDir()
		basename := filepath.Base(filename)
		if filename != rootAbs && strings.HasPrefix(basename, ".") {
			if isdir {
				return filepath.SkipDir
			}
			return nil
		}

		if !isdir && len(patterns) > 0 {
			notmatched := true
			for _, pattern := range patterns {
				if matched, _ := filepath.Match(pattern, basename); matched {
					notmatched = false
					break
				}
			}

			if notmatched {
				return nil
			}
		}

		name := filepath.Join(root, strings.TrimPrefix(filename, rootAbs))
		err = handler(root, name, isdir)
		if filepath.SkipDir == err || filepath.SkipAll == err {
			return err
		}

		if err != nil {
			log.Error("[disk.Walk] %s %s", filename, err.Error())
			return err
		}

		return nil
	})
}

// Read the file content
func (disk *Disk) Read(name string) ([]byte, error) {
	file, err := disk.Abs(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(file)
}

// Stat the file
func (disk *Disk) Stat(name string) (os.FileInfo, error) {
	file, err := disk.Abs(name)
	if err != nil {
		return nil, err
	}
	return os.Stat(file)
}

// Exists check if the file is exists
func (disk *Disk) Exists(name string) (bool, error) {
	file, err := disk.Abs(name)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(file)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// Watch the changes of the given files and folders until the interrupt
// channel receives a code. The handler receives the event type (CREATE,
// WRITE, REMOVE, RENAME, CHMOD) and the absolute file name.
func (disk *Disk) Watch(paths []string, handler func(event string, name string), interrupt chan uint8) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, path := range paths {
		filename, err := disk.Abs(path)
		if err != nil {
			return err
		}

		if err := watcher.Add(filename); err != nil {
			return fmt.Errorf("[Watch] %s %s", filename, err.Error())
		}
		log.Trace("[Watch] Watching: %s", filename)
	}

	for {
		select {
		case code := <-interrupt:
			log.Trace("[Watch] Exit(%d)", code)
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			for _, eventType := range strings.Split(event.Op.String(), "|") {
				handler(eventType, event.Name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("[Watch] Error: %s", err.Error())
		}
	}
}
