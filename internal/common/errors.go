package common

import "errors"

// ErrorNotFound is returned by repositories when a record does not exist.
var ErrorNotFound = errors.New("not found")
