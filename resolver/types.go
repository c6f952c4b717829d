package resolver

import "github.com/yaoapp/ssr/application"

// Resolver locate the script assets from a partial or misplaced name
type Resolver struct {
	app    application.Application
	option Option
}

// Option the resolver option
type Option struct {
	Base            string `json:"base,omitempty"`            // the folder to search from when the name has no folder, default the application root
	SearchDepth     int    `json:"searchDepth,omitempty"`     // how many parent folders to climb, default 3
	MinimumFileSize int64  `json:"minimumFileSize,omitempty"` // ignore the files not larger than this (bytes), default 10
}

// Filter accept or reject a candidate file
type Filter func(path string) bool

type candidate struct {
	path     string
	score    int
	minified bool
}
