package services

import "errors"

// ErrNoReport is returned by report queries before the first successful run
var ErrNoReport = errors.New("no analysis report available")
