package transform

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/yaoapp/ssr/runtime"
)

// ESBuild the native transformer
type ESBuild struct {
	Target string
}

var targets = map[string]api.Target{
	"es5":    api.ES5,
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"esnext": api.ESNext,
}

var loaders = map[string]api.Loader{
	"js":  api.LoaderJS,
	"jsx": api.LoaderJSX,
	"ts":  api.LoaderTS,
	"tsx": api.LoaderTSX,
	"css": api.LoaderCSS,
}

// NewESBuild create a esbuild transformer, the target defaults to es2015
func NewESBuild(target string) *ESBuild {
	if target == "" {
		target = "es2015"
	}
	return &ESBuild{Target: target}
}

// Transform the jsx/ts/tsx source code to javascript
func (t *ESBuild) Transform(source string, option runtime.TransformOption) (string, error) {

	loader, has := loaders[option.Loader]
	if !has {
		loader = api.LoaderJSX
	}

	target := option.Target
	if target == "" {
		target = t.Target
	}

	es, has := targets[strings.ToLower(target)]
	if !has {
		return "", fmt.Errorf("transform target %s does not support", target)
	}

	result := api.Transform(source, api.TransformOptions{
		Loader:           loader,
		Target:           es,
		Sourcefile:       option.Filename,
		MinifyWhitespace: option.Minify,
		MinifySyntax:     option.Minify,
		JSX:              api.JSXTransform,
	})

	if len(result.Errors) > 0 {
		errors := []string{}
		for _, err := range result.Errors {
			errors = append(errors, err.Text)
		}
		return "", fmt.Errorf("transform %s code error: %v", option.Loader, strings.Join(errors, "\n"))
	}
	return string(result.Code), nil
}

// MinifyJS minify an inline client script for the target (default es2015),
// the identifiers are kept since the other scripts of the page may use them
func MinifyJS(code string, target string) (string, error) {
	if target == "" {
		target = "es2015"
	}

	es, has := targets[strings.ToLower(target)]
	if !has {
		return "", fmt.Errorf("minify target %s does not support", target)
	}

	result := api.Transform(code, api.TransformOptions{
		Loader:           api.LoaderJS,
		Target:           es,
		MinifyWhitespace: true,
		MinifySyntax:     true,
	})

	if len(result.Errors) > 0 {
		errors := []string{}
		for _, err := range result.Errors {
			errors = append(errors, err.Text)
		}
		return "", fmt.Errorf("minify js code error: %v", strings.Join(errors, "\n"))
	}
	return string(result.Code), nil
}

// MinifyCSS minify the css code
func MinifyCSS(cssCode string) (string, error) {

	result := api.Transform(cssCode, api.TransformOptions{
		Loader:           api.LoaderCSS,
		MinifyWhitespace: true,
		MinifySyntax:     true,
	})
	if len(result.Errors) > 0 {
		errors := []string{}
		for _, err := range result.Errors {
			errors = append(errors, err.Text)
		}
		return "", fmt.Errorf("minify css code error: %v", strings.Join(errors, "\n"))
	}
	return string(result.Code), nil
}
