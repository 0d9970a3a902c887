package pool

import "time"

const (
	timeoutShort = time.Second
	tick         = time.Millisecond
)
