// Package logging configures the slog loggers used across subgen.
//
// Two handler formats are supported: a compact console format for interactive
// use and JSON for machine consumption. Component loggers carry a "component"
// attribute that the console handler folds into the message prefix.
package logging
