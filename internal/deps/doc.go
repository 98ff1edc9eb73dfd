// Package deps reports the availability of external binaries subgen invokes
// but does not download itself.
package deps
