// Package modules implements the built-in module set (math, random,
// os, path, time, base64, termsize, sys, json), each registered
// through (*interp.Interpreter).RegisterModule so they resolve exactly
// like a host-registered module would.
package modules

import "github.com/cwbudde/go-bob/internal/interp"

// InstallAll registers every built-in module on in.
func InstallAll(in *interp.Interpreter) {
	RegisterMath(in)
	RegisterRandom(in)
	RegisterOS(in)
	RegisterPath(in)
	RegisterTime(in)
	RegisterBase64(in)
	RegisterTermSize(in)
	RegisterSys(in)
	RegisterJSON(in)
}
