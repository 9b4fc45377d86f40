// SPDX-License-Identifier: GPL-2.0-or-later

// Package conlog is where the resource layer reports conditions it can not
// return as errors, cleanup paths mostly. The embedding system decides where
// that output goes.
package conlog

import "log"

var p func(string, ...interface{}) = log.Printf

func SetPrintf(f func(string, ...interface{})) {
	p = f
}

func Printf(format string, v ...interface{}) {
	p(format, v...)
}
