package pool

import (
	"time"

	"github.com/yaoapp/kun/log"
)

// Validate the option
func (option *Option) Validate() {

	if option.MinSize < 0 {
		option.MinSize = 0
	}

	if option.MaxSize == 0 {
		option.MaxSize = 100
	}

	if option.MinSize > option.MaxSize {
		log.Warn("[Pool] the minSize value should smaller than maxSize")
		option.MaxSize = option.MinSize
	}

	if option.IdleTTL == 0 {
		option.IdleTTL = 60 * time.Second
	}

	if option.AcquireTimeout == 0 {
		option.AcquireTimeout = 5 * time.Second
	}
}
