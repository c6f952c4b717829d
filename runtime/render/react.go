package render

import (
	"fmt"

	"github.com/yaoapp/ssr/runtime"
)

// ID the renderer id
func (r React) ID() string {
	if r.Static {
		return "react-static"
	}
	return "react"
}

// Render the component with the props
func (r React) Render(ctx runtime.Context, name string, input string) (string, error) {
	method := "renderToString"
	if r.Static {
		method = "renderToStaticMarkup"
	}

	if input == "" {
		input = "null"
	}

	script := fmt.Sprintf("ReactDOMServer.%s(React.createElement(%s,%s));", method, name, input)
	value, err := ctx.Execute(script, name+".render.js")
	if err != nil {
		return "", err
	}

	html, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%s rendered %T, should be a string", name, value)
	}
	return html, nil
}

// Bootstrap the client script mounting the component on the root element
func Bootstrap(name string, input string, rootID string) string {
	if input == "" {
		input = "null"
	}
	return fmt.Sprintf("ReactDOM.render(React.createElement(%s,%s), document.getElementById('%s'));", name, input, rootID)
}
