// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bdd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
)

// Error returns the error status of the manager, or the empty string if
// there is none.
func (b *BDD) Error() string {
	if b.err == nil {
		return ""
	}
	return b.err.Error()
}

// Errored reports whether a prior operation on b failed.
func (b *BDD) Errored() bool {
	return b.err != nil
}

func (b *BDD) seterror(format string, a ...interface{}) Node {
	wrapped := errors.Errorf(format, a...)
	if b.err != nil {
		wrapped = errors.Wrap(b.err, wrapped.Error())
	}
	b.err = wrapped
	if b.log != nil && b.log.IsDebug() {
		b.log.Debug("bdd error", "error", b.err)
	}
	return nil
}

// SetLogger attaches a structured logger used for Trace/Debug-level GC,
// resize and error diagnostics. A nil logger silences all of it.
func (b *BDD) SetLogger(l hclog.Logger) {
	b.log = l
}
