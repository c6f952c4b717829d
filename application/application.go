package application

import (
	"fmt"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	"github.com/yaoapp/ssr/application/disk"
	"gopkg.in/yaml.v3"
)

// OpenFromDisk open the application from disk
func OpenFromDisk(root string) (Application, error) {
	return disk.Open(root)
}

// Parse the json/jsonc/yaml type data
func Parse(name string, data []byte, vPtr interface{}) error {
	ext := filepath.Ext(name)
	switch ext {
	case ".jsonc":
		content := trim(data, nil)
		err := jsoniter.Unmarshal(content, vPtr)
		if err != nil {
			return fmt.Errorf("[Parse] %s Error %s", name, err.Error())
		}
		return nil

	case ".json":
		err := jsoniter.Unmarshal(data, vPtr)
		if err != nil {
			return fmt.Errorf("[Parse] %s Error %s", name, err.Error())
		}
		return nil

	case ".yml", ".yaml":
		err := yaml.Unmarshal(data, vPtr)
		if err != nil {
			return fmt.Errorf("[Parse] %s Error %s", name, err.Error())
		}
		return nil
	}

	return fmt.Errorf("[Parse] %s Error %s does not support", name, ext)
}

// trim strips out the comments and the trailing commas of a jsonc document.
// The result keeps the length and the line breaks of the input so the
// parser errors point at the right offsets.
func trim(src, dst []byte) []byte {
	dst = dst[:0]
	for i := 0; i < len(src); i++ {
		if src[i] == '/' && i < len(src)-1 {
			switch src[i+1] {
			case '/':
				dst = append(dst, ' ', ' ')
				for i += 2; i < len(src); i++ {
					if src[i] == '\n' {
						dst = append(dst, '\n')
						break
					}
					dst = append(dst, blank(src[i]))
				}
				continue

			case '*':
				dst = append(dst, ' ', ' ')
				for i += 2; i < len(src)-1; i++ {
					if src[i] == '*' && src[i+1] == '/' {
						dst = append(dst, ' ', ' ')
						i++
						break
					}
					dst = append(dst, blank(src[i]))
				}
				continue
			}
		}

		dst = append(dst, src[i])
		switch src[i] {
		case '"':
			for i = i + 1; i < len(src); i++ {
				dst = append(dst, src[i])
				if src[i] == '"' && !escaped(src, i) {
					break
				}
			}

		case '}', ']':
			for j := len(dst) - 2; j >= 0; j-- {
				if dst[j] <= ' ' {
					continue
				}
				if dst[j] == ',' {
					dst[j] = ' '
				}
				break
			}
		}
	}
	return dst
}

func blank(c byte) byte {
	if c == '\t' || c == '\r' || c == '\n' {
		return c
	}
	return ' '
}

func escaped(src []byte, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && src[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}
