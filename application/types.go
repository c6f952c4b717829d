package application

import "os"

// Application the filesystem the scripts and templates are loaded from
type Application interface {
	Walk(path string, handler func(root, filename string, isdir bool) error, patterns ...string) error
	Read(name string) ([]byte, error)
	Stat(name string) (os.FileInfo, error)
	Exists(name string) (bool, error)
	Watch(paths []string, handler func(event string, name string), interrupt chan uint8) error
	Abs(name string) (string, error)
	Root() string
}
