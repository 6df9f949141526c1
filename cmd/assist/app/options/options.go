// Package options contains flags and options for initializing the assist server.
package options

import (
	"fmt"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	assistsvc "github.com/camos-io/camos-assist/internal/assist"
	cliflag "github.com/camos-io/camos-assist/pkg/app/cliflag"
	assistopts "github.com/camos-io/camos-assist/pkg/options/assist"
	authopts "github.com/camos-io/camos-assist/pkg/options/auth"
	cacheopts "github.com/camos-io/camos-assist/pkg/options/cache"
	dbopts "github.com/camos-io/camos-assist/pkg/options/database"
	faqopts "github.com/camos-io/camos-assist/pkg/options/faq"
	httpopts "github.com/camos-io/camos-assist/pkg/options/http"
	jwtopts "github.com/camos-io/camos-assist/pkg/options/jwt"
	llmopts "github.com/camos-io/camos-assist/pkg/options/llm"
	logopts "github.com/camos-io/camos-assist/pkg/options/logger"
	milvusopts "github.com/camos-io/camos-assist/pkg/options/milvus"
)

// ServerOptions contains the configuration options for the server.
type ServerOptions struct {
	// HTTPOptions contains HTTP server configuration.
	HTTPOptions *httpopts.Options `json:"http" mapstructure:"http"`

	// LogOptions contains logger configuration.
	LogOptions *logopts.Options `json:"log" mapstructure:"log"`

	// MilvusOptions contains Milvus vector database configuration.
	MilvusOptions *milvusopts.Options `json:"milvus" mapstructure:"milvus"`

	// DatabaseOptions contains relational database configuration.
	DatabaseOptions *dbopts.Options `json:"database" mapstructure:"database"`

	// EmbeddingOptions contains embedding provider configuration.
	EmbeddingOptions *llmopts.ProviderOptions `json:"embedding" mapstructure:"embedding"`

	// ChatOptions contains chat provider configuration.
	ChatOptions *llmopts.ProviderOptions `json:"chat" mapstructure:"chat"`

	// AssistOptions contains retrieval-pipeline configuration.
	AssistOptions *assistopts.Options `json:"assist" mapstructure:"assist"`

	// FAQOptions contains FAQ hub configuration.
	FAQOptions *faqopts.Options `json:"faq" mapstructure:"faq"`

	// CacheOptions contains query cache configuration.
	CacheOptions *cacheopts.Options `json:"cache" mapstructure:"cache"`

	// JWTOptions contains token signing configuration.
	JWTOptions *jwtopts.Options `json:"jwt" mapstructure:"jwt"`

	// AuthOptions contains login configuration.
	AuthOptions *authopts.Options `json:"auth" mapstructure:"auth"`
}

// NewServerOptions creates a ServerOptions instance with default values.
func NewServerOptions() *ServerOptions {
	httpOpts := httpopts.NewOptions()
	httpOpts.Addr = ":8082"

	return &ServerOptions{
		HTTPOptions:      httpOpts,
		LogOptions:       logopts.NewOptions(),
		MilvusOptions:    milvusopts.NewOptions(),
		DatabaseOptions:  dbopts.NewOptions(),
		EmbeddingOptions: llmopts.NewEmbeddingOptions(),
		ChatOptions:      llmopts.NewChatOptions(),
		AssistOptions:    assistopts.NewOptions(),
		FAQOptions:       faqopts.NewOptions(),
		CacheOptions:     cacheopts.NewOptions(),
		JWTOptions:       jwtopts.NewOptions(),
		AuthOptions:      authopts.NewOptions(),
	}
}

// Flags returns flags for a specific server by section name.
func (o *ServerOptions) Flags() (fss cliflag.NamedFlagSets) {
	o.HTTPOptions.AddFlags(fss.FlagSet("http"))
	o.LogOptions.AddFlags(fss.FlagSet("log"))
	o.MilvusOptions.AddFlags(fss.FlagSet("milvus"))
	o.DatabaseOptions.AddFlags(fss.FlagSet("database"))
	o.EmbeddingOptions.AddFlags(fss.FlagSet("embedding"), "embedding.")
	o.ChatOptions.AddFlags(fss.FlagSet("chat"), "chat.")
	o.AssistOptions.AddFlags(fss.FlagSet("assist"))
	o.FAQOptions.AddFlags(fss.FlagSet("faq"))
	o.CacheOptions.AddFlags(fss.FlagSet("cache"))
	o.JWTOptions.AddFlags(fss.FlagSet("jwt"))
	o.AuthOptions.AddFlags(fss.FlagSet("auth"))

	return fss
}

// Complete completes all the required options.
func (o *ServerOptions) Complete() error {
	if err := o.EmbeddingOptions.Complete(); err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	if err := o.ChatOptions.Complete(); err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	if err := o.AssistOptions.Complete(); err != nil {
		return fmt.Errorf("assist: %w", err)
	}
	if err := o.CacheOptions.Complete(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := o.DatabaseOptions.Complete(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := o.JWTOptions.Complete(); err != nil {
		return fmt.Errorf("jwt: %w", err)
	}
	return nil
}

// Validate checks whether the options in ServerOptions are valid.
func (o *ServerOptions) Validate() error {
	errs := []error{}

	errs = append(errs, o.HTTPOptions.Validate()...)
	if err := o.LogOptions.Validate(); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, o.MilvusOptions.Validate()...)
	errs = append(errs, o.DatabaseOptions.Validate()...)
	errs = append(errs, o.EmbeddingOptions.Validate()...)
	errs = append(errs, o.ChatOptions.Validate()...)
	errs = append(errs, o.AssistOptions.Validate()...)
	errs = append(errs, o.FAQOptions.Validate()...)
	errs = append(errs, o.CacheOptions.Validate()...)
	if err := o.JWTOptions.Validate(); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, o.AuthOptions.Validate()...)

	return utilerrors.NewAggregate(errs)
}

// Config builds an assistsvc.Config based on ServerOptions.
func (o *ServerOptions) Config() (*assistsvc.Config, error) {
	return &assistsvc.Config{
		HTTPOptions:      o.HTTPOptions,
		LogOptions:       o.LogOptions,
		MilvusOptions:    o.MilvusOptions,
		DatabaseOptions:  o.DatabaseOptions,
		EmbeddingOptions: o.EmbeddingOptions,
		ChatOptions:      o.ChatOptions,
		AssistOptions:    o.AssistOptions,
		FAQOptions:       o.FAQOptions,
		CacheOptions:     o.CacheOptions,
		JWTOptions:       o.JWTOptions,
		AuthOptions:      o.AuthOptions,
	}, nil
}
