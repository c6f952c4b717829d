package resolver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yaoapp/ssr/application/disk"
	"github.com/yaoapp/ssr/runtime"
)

var content = strings.Repeat("var a = 1;\n", 10)

func TestSearchMinifiedOnly(t *testing.T) {
	root := prepare(t, "libs/babel.min.js")
	r := newResolver(t, root, filepath.Join(root, "libs"))

	path, err := r.Search("babel", 1, nil)
	assert.Nil(t, err)
	assert.Equal(t, filepath.Join(root, "libs", "babel.min.js"), path)
}

func TestSearchPreferNonMinified(t *testing.T) {
	root := prepare(t, "libs/react.js", "libs/react.min.js", "libs/react-dom.js")
	r := newResolver(t, root, filepath.Join(root, "libs"))

	path, err := r.Search("react", 1, nil)
	assert.Nil(t, err)
	assert.Equal(t, filepath.Join(root, "libs", "react.js"), path)

	path, err = r.Search("react.min.js", 1, nil)
	assert.Nil(t, err)
	assert.Equal(t, filepath.Join(root, "libs", "react.min.js"), path)

	path, err = r.Search("react-dom", 1, nil)
	assert.Nil(t, err)
	assert.Equal(t, filepath.Join(root, "libs", "react-dom.js"), path)
}

func TestSearchMinWithinName(t *testing.T) {
	root := prepare(t, "libs/admin.min.js", "libs/admin-panel.js")
	r := newResolver(t, root, filepath.Join(root, "libs"))

	// "admin" does not ask for a minified file
	path, err := r.Search("admin", 1, nil)
	assert.Nil(t, err)
	assert.Equal(t, filepath.Join(root, "libs", "admin-panel.js"), path)

	path, err = r.Search("admin.min.js", 1, nil)
	assert.Nil(t, err)
	assert.Equal(t, filepath.Join(root, "libs", "admin.min.js"), path)

	assert.True(t, isMinified("react.min.js"))
	assert.True(t, isMinified("React.MIN.js"))
	assert.False(t, isMinified("minimal.js"))
	assert.False(t, isMinified("admin.js"))
	assert.False(t, isMinified("jquery.minimal.js"))
}

func TestSearchExact(t *testing.T) {
	root := prepare(t, "libs/main.jsx")
	r := newResolver(t, root, "")

	path, err := r.Search(filepath.Join(root, "libs", "main.jsx"), 1, nil)
	assert.Nil(t, err)
	assert.Equal(t, filepath.Join(root, "libs", "main.jsx"), path)

	path, err = r.Search("libs/main.jsx", 1, nil)
	assert.Nil(t, err)
	assert.Equal(t, filepath.Join(root, "libs", "main.jsx"), path)
}

func TestSearchRecursive(t *testing.T) {
	root := prepare(t, "public/js/vendor/handlebars.js")
	r := newResolver(t, root, "")

	path, err := r.Search("handlebars.js", 1, Scripts)
	assert.Nil(t, err)
	assert.Equal(t, filepath.Join(root, "public", "js", "vendor", "handlebars.js"), path)
}

func TestSearchParents(t *testing.T) {
	root := prepare(t, "scripts/require.js", "pages/home/index.html")
	r := newResolver(t, root, filepath.Join(root, "pages", "home"))

	_, err := r.Search("require", 1, nil)
	assert.True(t, errors.Is(err, runtime.ErrResolution))

	path, err := r.Search("require", 3, nil)
	assert.Nil(t, err)
	assert.Equal(t, filepath.Join(root, "scripts", "require.js"), path)
}

func TestSearchMisplacedFolder(t *testing.T) {
	root := prepare(t, "js/main.jsx")
	r := newResolver(t, root, "")

	path, err := r.Search("src/main.jsx", 2, nil)
	assert.Nil(t, err)
	assert.Equal(t, filepath.Join(root, "js", "main.jsx"), path)
}

func TestSearchFilterAndSize(t *testing.T) {
	root := prepare(t, "libs/dust.css", "libs/dust.js")
	os.WriteFile(filepath.Join(root, "libs", "tiny.js"), []byte("var a;"), 0644)
	r := newResolver(t, root, filepath.Join(root, "libs"))

	path, err := r.Search("dust", 1, Scripts)
	assert.Nil(t, err)
	assert.Equal(t, filepath.Join(root, "libs", "dust.js"), path)

	_, err = r.Search("tiny", 1, nil)
	assert.True(t, errors.Is(err, runtime.ErrResolution))

	_, err = r.Search("", 1, nil)
	assert.True(t, errors.Is(err, runtime.ErrResolution))
}

func TestResolve(t *testing.T) {
	root := prepare(t, "libs/react-dom-server.js", "libs/react-dom-server.css")
	r := newResolver(t, root, "")

	path, err := r.Resolve("react-dom-server")
	assert.Nil(t, err)
	assert.Equal(t, filepath.Join(root, "libs", "react-dom-server.js"), path)
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://unpkg.com/react@18/umd/react.development.js"))
	assert.True(t, IsURL("http://ajax.googleapis.com/ajax/libs/jquery/1/jquery.min.js"))
	assert.False(t, IsURL("main.jsx"))
	assert.False(t, IsURL("/var/www/main.jsx"))
	assert.False(t, IsURL("ftp://example.com/a.js"))
}

func newResolver(t *testing.T, root string, base string) *Resolver {
	app, err := disk.Open(root)
	if err != nil {
		t.Fatal(err)
	}
	return New(app, Option{Base: base, SearchDepth: 1})
}

func prepare(t *testing.T, files ...string) string {
	root := t.TempDir()
	for _, name := range files {
		file := filepath.Join(root, name)
		os.MkdirAll(filepath.Dir(file), os.ModePerm)
		if err := os.WriteFile(file, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}
