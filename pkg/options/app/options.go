// Package app defines the option interfaces consumed by the application scaffold.
package app

import "github.com/camos-io/camos-assist/pkg/app/cliflag"

// CliOptions abstracts configuration options for reading parameters from the
// command line.
type CliOptions interface {
	// Flags returns flags grouped by named flag sets.
	Flags() cliflag.NamedFlagSets
	// Complete completes the options with defaults and derived values.
	Complete() error
	// Validate validates all the options.
	Validate() error
}
