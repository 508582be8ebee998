//go:build !unix

package secmem

import "errors"

var errUnsupported = errors.New("page locking is not supported on this platform")

func lock(b []byte) error   { return errUnsupported }
func unlock(b []byte) error { return errUnsupported }
