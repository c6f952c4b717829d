package runtime

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	// ErrResolution the asset could not be found
	ErrResolution = errors.New("asset not found")

	// ErrTransform the transformer failed or returned nothing
	ErrTransform = errors.New("transform failed")

	// ErrContextCreation the context factory failed
	ErrContextCreation = errors.New("context creation failed")

	// ErrRender the renderer failed
	ErrRender = errors.New("render failed")

	// ErrWatchIO a transient stat/read error while polling
	ErrWatchIO = errors.New("watch io failed")

	// ErrTimeout the operation timed out
	ErrTimeout = errors.New("timeout")

	// ErrClosed the resource was closed
	ErrClosed = errors.New("closed")
)

// New create a factory from a function
func New(fn func(seed string) (Context, error)) Factory {
	return FactoryFunc(fn)
}

// New call the function
func (fn FactoryFunc) New(seed string) (Context, error) {
	return fn(seed)
}

// Transformable check if the file needs a transform before it runs
func Transformable(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jsx", ".tsx", ".ts":
		return true
	}
	return false
}

// Loader the transform loader of the file
func Loader(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jsx":
		return "jsx"
	case ".tsx":
		return "tsx"
	case ".ts":
		return "ts"
	}
	return "js"
}
