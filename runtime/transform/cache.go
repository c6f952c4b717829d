package transform

import (
	"encoding/hex"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	jsoniter "github.com/json-iterator/go"
	"github.com/yaoapp/kun/log"
	"github.com/yaoapp/ssr/application"
	"github.com/yaoapp/ssr/runtime"
	"golang.org/x/crypto/blake2b"
)

// Cache memoize the outputs of a transformer
type Cache struct {
	transformer runtime.Transformer
	app         application.Application
	option      runtime.TransformOption
	lru         *lru.Cache
}

// NewCache create a transform cache holding at most size outputs, the option is
// the base option merged into every call
func NewCache(transformer runtime.Transformer, app application.Application, size int, option runtime.TransformOption) (*Cache, error) {
	if size <= 0 {
		size = 512
	}

	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}

	return &Cache{
		transformer: transformer,
		app:         app,
		option:      option,
		lru:         cache,
	}, nil
}

// Transform the source, the output is memoized by the source and the option
func (cache *Cache) Transform(source string, option runtime.TransformOption) (string, error) {
	option = cache.merge(option)
	key := Fingerprint(source, option)
	if code, has := cache.lru.Get(key); has {
		return code.(string), nil
	}

	code, err := cache.transformer.Transform(source, option)
	if err != nil {
		log.Warn("[Transform] %s %s", option.Filename, err.Error())
		return "", fmt.Errorf("%s %w: %s", option.Filename, runtime.ErrTransform, err.Error())
	}

	if strings.TrimSpace(code) == "" {
		log.Warn("[Transform] %s the output is empty", option.Filename)
		return "", fmt.Errorf("%s %w: the output is empty", option.Filename, runtime.ErrTransform)
	}

	cache.lru.Add(key, code)
	return code, nil
}

// TransformFile read the file and transform it, the loader follows the file extension
func (cache *Cache) TransformFile(file string) (string, error) {
	source, err := cache.app.Read(file)
	if err != nil {
		return "", err
	}
	return cache.Transform(string(source), runtime.TransformOption{Loader: runtime.Loader(file), Filename: file})
}

// Len the number of the memoized outputs
func (cache *Cache) Len() int {
	return cache.lru.Len()
}

// Purge remove all the memoized outputs
func (cache *Cache) Purge() {
	cache.lru.Purge()
}

func (cache *Cache) merge(option runtime.TransformOption) runtime.TransformOption {
	if option.Loader == "" {
		option.Loader = cache.option.Loader
	}
	if option.Target == "" {
		option.Target = cache.option.Target
	}
	if len(option.Presets) == 0 {
		option.Presets = cache.option.Presets
	}
	if len(option.Plugins) == 0 {
		option.Plugins = cache.option.Plugins
	}
	if option.ParserOptions == nil {
		option.ParserOptions = cache.option.ParserOptions
	}
	option.Minify = option.Minify || cache.option.Minify
	return option
}

// Fingerprint the cache key of a transform
func Fingerprint(source string, option runtime.TransformOption) string {
	hash := blake2b.Sum256([]byte(source))
	opts, _ := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(option)
	optHash := blake2b.Sum256(opts)
	return hex.EncodeToString(hash[:]) + hex.EncodeToString(optHash[:8])
}
