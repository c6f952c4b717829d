package v8

import "time"

// Validate the option
func (option *Option) Validate() {
	if option.Timeout == 0 {
		option.Timeout = 5 * time.Second
	}

	if option.SeedOrigin == "" {
		option.SeedOrigin = "bundle.js"
	}
}
