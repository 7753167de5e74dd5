// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txpool

import (
	"github.com/ordata-labs/chainorg/chainlog"
)

// log is a logger that is initialized with no output filters. This
// means the package will not perform any logging by default until the
// caller requests it. The default amount of logging is none.
var log = chainlog.Disabled

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger chainlog.Logger) {
	log = logger
}

// DisableLog disables all library log output.
func DisableLog() {
	log = chainlog.Disabled
}
