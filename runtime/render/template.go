package render

import (
	"fmt"
	"strings"

	"github.com/yaoapp/ssr/runtime"
)

const templateSource = "__ssr_template_source"

var expressions = map[Framework]string{
	Handlebars: "Handlebars.compile(%s)(%s);",
	Hogan:      "Hogan.compile(%s).render(%s);",
	Mustache:   "Mustache.render(%s,%s);",
	Underscore: "_.template(%s)(%s);",
	DoT:        "doT.template(%s)(%s);",
	EJS:        "ejs.render(%s,%s);",
	Dust:       "(function(){var out; dust.renderSource(%s,%s,function(err, o){ if (err) { throw err; } out = o; }); return out;})();",
}

// Assets the script each framework needs in the contexts
var Assets = map[Framework]string{
	Handlebars: "handlebars",
	Hogan:      "hogan",
	Mustache:   "mustache",
	Underscore: "underscore",
	DoT:        "doT",
	EJS:        "ejs",
	Dust:       "dust",
}

// ParseFramework the framework of the name
func ParseFramework(name string) (Framework, error) {
	framework := Framework(strings.ToLower(name))
	if framework == "moustache" {
		framework = Mustache
	}
	if _, has := expressions[framework]; !has {
		return "", fmt.Errorf("the template framework %s does not support", name)
	}
	return framework, nil
}

// ID the renderer id
func (r Template) ID() string {
	return "template:" + string(r.Framework)
}

// Render the template source with the props
func (r Template) Render(ctx runtime.Context, name string, input string) (string, error) {
	expression, has := expressions[r.Framework]
	if !has {
		return "", fmt.Errorf("the template framework %s does not support", r.Framework)
	}

	if input == "" {
		input = "{}"
	}

	err := ctx.Set(templateSource, r.Source())
	if err != nil {
		return "", err
	}

	value, err := ctx.Execute(fmt.Sprintf(expression, templateSource, input), name)
	if err != nil {
		return "", err
	}

	html, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%s rendered %T, should be a string", name, value)
	}
	return html, nil
}
