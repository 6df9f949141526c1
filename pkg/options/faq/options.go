// Package faq provides FAQ hub configuration options.
package faq

import (
	"fmt"

	"github.com/camos-io/camos-assist/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Options contains FAQ hub configuration.
type Options struct {
	// FAQFile is the spreadsheet holding answered questions.
	FAQFile string `json:"faq-file" mapstructure:"faq-file"`

	// PendingFile is the spreadsheet holding unanswered questions.
	PendingFile string `json:"pending-file" mapstructure:"pending-file"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		FAQFile:     "_output/faq/faq_data.xlsx",
		PendingFile: "_output/faq/pending_questions.xlsx",
	}
}

// AddFlags adds flags for FAQ options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.FAQFile, options.Join(prefixes...)+"faq.faq-file", o.FAQFile, "Spreadsheet file for answered questions.")
	fs.StringVar(&o.PendingFile, options.Join(prefixes...)+"faq.pending-file", o.PendingFile, "Spreadsheet file for pending questions.")
}

// Validate validates the FAQ options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.FAQFile == "" {
		errs = append(errs, fmt.Errorf("faq-file cannot be empty"))
	}
	if o.PendingFile == "" {
		errs = append(errs, fmt.Errorf("pending-file cannot be empty"))
	}
	if o.FAQFile != "" && o.FAQFile == o.PendingFile {
		errs = append(errs, fmt.Errorf("faq-file and pending-file must differ"))
	}
	return errs
}

// Complete completes the FAQ options with defaults.
func (o *Options) Complete() error {
	return nil
}
