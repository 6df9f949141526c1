// Package auth provides login gate configuration options.
package auth

import (
	"fmt"
	"strings"

	"github.com/camos-io/camos-assist/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Options contains login gate configuration.
type Options struct {
	// AccessCodeHash is the bcrypt hash of the shared access code.
	// Empty disables the access-code check (open login).
	AccessCodeHash string `json:"access-code-hash" mapstructure:"access-code-hash"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{}
}

// AddFlags adds flags for auth options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.AccessCodeHash, options.Join(prefixes...)+"auth.access-code-hash", o.AccessCodeHash, "Bcrypt hash of the shared access code (empty disables the check).")
}

// Validate validates the auth options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.AccessCodeHash != "" && !strings.HasPrefix(o.AccessCodeHash, "$2") {
		errs = append(errs, fmt.Errorf("access-code-hash must be a bcrypt hash"))
	}
	return errs
}

// Complete completes the auth options with defaults.
func (o *Options) Complete() error {
	return nil
}
