package cache

import "errors"

var (
	ErrCacheFull     = errors.New("cache is full")
	ErrNotConnected  = errors.New("cache engine not connected")
	ErrUnknownEngine = errors.New("unknown cache engine")
)
