// Copyright 2019-2020 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package mtrace

import (
	"github.com/intuitivelabs/slog"
)

// Log is the package-wide logging facility. All tracer code logs
// through it instead of the standard log package, so log level and
// destination follow whatever the embedding process configures.
var Log slog.Log

func init() {
	slog.Init(&Log, slog.LINFO, slog.LOptNone, slog.LDefaultOut)
}

// DBG logs at debug level, guarded by DBGon() at call sites that build
// their message eagerly (matches the teacher's DBG()/DBGon() pattern).
func DBG(f string, args ...interface{}) {
	Log.DBG(f, args...)
}

// DBGon reports whether debug-level logging is currently enabled.
func DBGon() bool {
	return Log.DBGon()
}
