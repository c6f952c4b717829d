package transform

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/yaoapp/ssr/runtime"
	"github.com/yaoapp/ssr/runtime/pool"
)

const (
	scriptInput  = "__ssr_transform_input"
	scriptOutput = "__ssr_transform_output"
)

// DefaultPresets the babel presets used when the option gives none
var DefaultPresets = []string{"es2015", "react"}

// DefaultParserOptions the babel parser options used when the option gives none
var DefaultParserOptions = map[string]interface{}{
	"allowImportExportEverywhere": true,
	"allowReturnOutsideFunction":  true,
}

// Script a transformer running Babel inside a pooled context.
// The contexts of the pool must be seeded with the babel standalone runtime.
type Script struct {
	pool *pool.Pool
}

// NewScript create a script transformer on the pool
func NewScript(p *pool.Pool) *Script {
	return &Script{pool: p}
}

// Transform the source with Babel.transform
func (t *Script) Transform(source string, option runtime.TransformOption) (string, error) {

	lease, err := t.pool.Acquire(context.Background())
	if err != nil {
		return "", err
	}
	defer lease.Release()

	opts, err := babelOptions(option)
	if err != nil {
		return "", err
	}

	err = lease.Set(scriptInput, source)
	if err != nil {
		return "", err
	}

	script := fmt.Sprintf("%s = Babel.transform(%s, %s).code;", scriptOutput, scriptInput, opts)
	_, err = lease.Execute(script, "transform.js")
	if err != nil {
		return "", err
	}

	value, err := lease.Get(scriptOutput)
	if err != nil {
		return "", err
	}

	code, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("the transform output is %T, should be a string", value)
	}
	return code, nil
}

func babelOptions(option runtime.TransformOption) (string, error) {
	opts := map[string]interface{}{}

	presets := option.Presets
	if len(presets) == 0 {
		presets = DefaultPresets
	}

	switch option.Loader {
	case "ts", "tsx":
		presets = append(append([]string{}, presets...), "typescript")
		if option.Filename == "" {
			option.Filename = "index." + option.Loader
		}
	}
	opts["presets"] = presets

	if len(option.Plugins) > 0 {
		opts["plugins"] = option.Plugins
	}

	opts["parserOpts"] = DefaultParserOptions
	if option.ParserOptions != nil {
		opts["parserOpts"] = option.ParserOptions
	}

	if option.Filename != "" {
		opts["filename"] = option.Filename
	}

	if option.Minify {
		opts["minified"] = true
		opts["comments"] = false
	} else {
		opts["retainLines"] = true
	}

	bytes, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(opts)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
