package disk

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOpen(t *testing.T) {
	_, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	_, err = Open("/path/not-exists")
	assert.NotNil(t, err)
}

func TestWalk(t *testing.T) {
	app := prepare(t)

	files := []string{}
	err := app.Walk("scripts", func(root, filename string, isdir bool) error {
		assert.Equal(t, "scripts", root)
		if !isdir {
			files = append(files, filename)
		}
		return nil
	}, "*.js")

	if err != nil {
		t.Fatal(err)
	}

	sort.Strings(files)
	assert.Equal(t, []string{
		filepath.Join("scripts", "lib", "react.js"),
		filepath.Join("scripts", "main.js"),
	}, files)
}

func TestWalkAbsolute(t *testing.T) {
	app := prepare(t)
	root := filepath.Join(app.Root(), "scripts")

	files := []string{}
	err := app.Walk(root, func(root, filename string, isdir bool) error {
		if !isdir {
			files = append(files, filename)
		}
		return nil
	})

	if err != nil {
		t.Fatal(err)
	}
	assert.Contains(t, files, filepath.Join(root, "main.js"))
	assert.Contains(t, files, filepath.Join(root, "main.css"))
	assert.NotContains(t, files, filepath.Join(root, ".hidden", "secret.js"))
}

func TestReadStatExists(t *testing.T) {
	app := prepare(t)

	data, err := app.Read("scripts/main.js")
	assert.Nil(t, err)
	assert.Equal(t, "var main = 1;", string(data))

	info, err := app.Stat("scripts/main.js")
	assert.Nil(t, err)
	assert.Equal(t, int64(13), info.Size())

	exists, err := app.Exists("scripts/main.js")
	assert.Nil(t, err)
	assert.True(t, exists)

	exists, err = app.Exists("scripts/none.js")
	assert.Nil(t, err)
	assert.False(t, exists)

	abs, err := app.Abs("/tmp/../tmp/x.js")
	assert.Nil(t, err)
	assert.Equal(t, "/tmp/x.js", abs)
}

func TestWatch(t *testing.T) {
	app := prepare(t)
	interrupt := make(chan uint8, 1)
	events := make(chan string, 10)

	go func() {
		err := app.Watch([]string{"scripts"}, func(event, name string) {
			events <- event + " " + filepath.Base(name)
		}, interrupt)
		assert.Nil(t, err)
	}()

	time.Sleep(100 * time.Millisecond)
	os.WriteFile(filepath.Join(app.Root(), "scripts", "main.js"), []byte("var main = 2;"), 0644)

	select {
	case event := <-events:
		assert.Contains(t, event, "main.js")
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
	interrupt <- 1
}

func prepare(t *testing.T) *Disk {
	root := t.TempDir()
	files := map[string]string{
		"scripts/main.js":           "var main = 1;",
		"scripts/main.css":          "body {}",
		"scripts/lib/react.js":      "var React = {};",
		"scripts/.hidden/secret.js": "var secret = 1;",
	}

	for name, content := range files {
		file := filepath.Join(root, name)
		os.MkdirAll(filepath.Dir(file), os.ModePerm)
		if err := os.WriteFile(file, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	app, err := Open(root)
	if err != nil {
		t.Fatal(err)
	}
	return app
}
