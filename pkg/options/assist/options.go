// Package assist provides retrieval and ingestion configuration options.
package assist

import (
	"fmt"

	"github.com/camos-io/camos-assist/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Options contains retrieval-pipeline configuration.
type Options struct {
	// ChunkSize is the size of text chunks in runes.
	ChunkSize int `json:"chunk-size" mapstructure:"chunk-size"`

	// ChunkOverlap is the overlap between chunks.
	ChunkOverlap int `json:"chunk-overlap" mapstructure:"chunk-overlap"`

	// TopK is the number of results to return from similarity search.
	TopK int `json:"top-k" mapstructure:"top-k"`

	// Collection is the name of the vector collection.
	Collection string `json:"collection" mapstructure:"collection"`

	// EmbeddingDim is the dimension of embedding vectors.
	EmbeddingDim int `json:"embedding-dim" mapstructure:"embedding-dim"`

	// DataDir is the directory for storing uploaded documents.
	DataDir string `json:"data-dir" mapstructure:"data-dir"`

	// PromptFile is the YAML file holding the answer/debug prompt templates.
	// The file is watched and hot-reloaded on change.
	PromptFile string `json:"prompt-file" mapstructure:"prompt-file"`

	// AllowDegraded lets a query fall back to direct generation when
	// retrieval fails. Off by default: retrieval errors surface.
	AllowDegraded bool `json:"allow-degraded" mapstructure:"allow-degraded"`

	// IndexWorkers is the worker pool size for directory ingestion.
	IndexWorkers int `json:"index-workers" mapstructure:"index-workers"`

	// OCREndpoint 可选的 OCR 服务地址，为空时跳过图片文字识别。
	OCREndpoint string `json:"ocr-endpoint" mapstructure:"ocr-endpoint"`

	// OCRMinChars 页面原生文本少于该字符数时送 OCR。
	OCRMinChars int `json:"ocr-min-chars" mapstructure:"ocr-min-chars"`

	// TableEndpoint 可选的表格抽取服务地址，为空时跳过表格抽取。
	TableEndpoint string `json:"table-endpoint" mapstructure:"table-endpoint"`

	// Enhancer 增强器配置。
	Enhancer *EnhancerOptions `json:"enhancer" mapstructure:"enhancer"`
}

// EnhancerOptions 检索增强器配置。
type EnhancerOptions struct {
	// EnableQueryRewrite 是否启用查询重写。
	EnableQueryRewrite bool `json:"enable-query-rewrite" mapstructure:"enable-query-rewrite"`

	// EnableHyDE 是否启用 HyDE（假设文档嵌入）。
	EnableHyDE bool `json:"enable-hyde" mapstructure:"enable-hyde"`

	// EnableRerank 是否启用重排序。
	EnableRerank bool `json:"enable-rerank" mapstructure:"enable-rerank"`

	// EnableRepacking 是否启用文档重组。
	EnableRepacking bool `json:"enable-repacking" mapstructure:"enable-repacking"`

	// RerankTopK 重排序后保留的文档数量。
	RerankTopK int `json:"rerank-top-k" mapstructure:"rerank-top-k"`
}

// NewEnhancerOptions 创建默认增强器配置。
func NewEnhancerOptions() *EnhancerOptions {
	return &EnhancerOptions{
		EnableQueryRewrite: true,
		EnableHyDE:         false, // HyDE 增加延迟，默认关闭
		EnableRerank:       true,
		EnableRepacking:    true,
		RerankTopK:         5,
	}
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		ChunkSize:     500,
		ChunkOverlap:  50,
		TopK:          5,
		Collection:    "camos_docs",
		EmbeddingDim:  768, // nomic-embed-text dimension
		DataDir:       "_output/assist-data",
		PromptFile:    "configs/prompt_templates.yaml",
		AllowDegraded: false,
		IndexWorkers:  4,
		OCRMinChars:   40,
		Enhancer:      NewEnhancerOptions(),
	}
}

// AddFlags adds flags for assist options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.IntVar(&o.ChunkSize, options.Join(prefixes...)+"assist.chunk-size", o.ChunkSize, "Size of text chunks.")
	fs.IntVar(&o.ChunkOverlap, options.Join(prefixes...)+"assist.chunk-overlap", o.ChunkOverlap, "Overlap between chunks.")
	fs.IntVar(&o.TopK, options.Join(prefixes...)+"assist.top-k", o.TopK, "Number of results from similarity search.")
	fs.StringVar(&o.Collection, options.Join(prefixes...)+"assist.collection", o.Collection, "Vector collection name.")
	fs.IntVar(&o.EmbeddingDim, options.Join(prefixes...)+"assist.embedding-dim", o.EmbeddingDim, "Embedding vector dimension.")
	fs.StringVar(&o.DataDir, options.Join(prefixes...)+"assist.data-dir", o.DataDir, "Directory for storing uploaded documents.")
	fs.StringVar(&o.PromptFile, options.Join(prefixes...)+"assist.prompt-file", o.PromptFile, "YAML file with prompt templates (hot-reloaded).")
	fs.BoolVar(&o.AllowDegraded, options.Join(prefixes...)+"assist.allow-degraded", o.AllowDegraded, "Fall back to direct generation when retrieval fails.")
	fs.IntVar(&o.IndexWorkers, options.Join(prefixes...)+"assist.index-workers", o.IndexWorkers, "Worker pool size for directory ingestion.")
	fs.StringVar(&o.OCREndpoint, options.Join(prefixes...)+"assist.ocr-endpoint", o.OCREndpoint, "OCR sidecar endpoint (empty disables OCR).")
	fs.IntVar(&o.OCRMinChars, options.Join(prefixes...)+"assist.ocr-min-chars", o.OCRMinChars, "Pages with fewer native chars are sent to OCR.")
	fs.StringVar(&o.TableEndpoint, options.Join(prefixes...)+"assist.table-endpoint", o.TableEndpoint, "Table extraction endpoint (empty disables table extraction).")

	// 增强器配置
	if o.Enhancer == nil {
		o.Enhancer = NewEnhancerOptions()
	}
	fs.BoolVar(&o.Enhancer.EnableQueryRewrite, options.Join(prefixes...)+"assist.enhancer.enable-query-rewrite", o.Enhancer.EnableQueryRewrite, "Enable query rewriting.")
	fs.BoolVar(&o.Enhancer.EnableHyDE, options.Join(prefixes...)+"assist.enhancer.enable-hyde", o.Enhancer.EnableHyDE, "Enable HyDE (Hypothetical Document Embeddings).")
	fs.BoolVar(&o.Enhancer.EnableRerank, options.Join(prefixes...)+"assist.enhancer.enable-rerank", o.Enhancer.EnableRerank, "Enable result reranking.")
	fs.BoolVar(&o.Enhancer.EnableRepacking, options.Join(prefixes...)+"assist.enhancer.enable-repacking", o.Enhancer.EnableRepacking, "Enable document repacking.")
	fs.IntVar(&o.Enhancer.RerankTopK, options.Join(prefixes...)+"assist.enhancer.rerank-top-k", o.Enhancer.RerankTopK, "Number of documents to keep after reranking.")
}

// Validate validates the assist options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("chunk-size must be positive"))
	}
	if o.ChunkOverlap < 0 || o.ChunkOverlap >= o.ChunkSize {
		errs = append(errs, fmt.Errorf("chunk-overlap must be in [0, chunk-size)"))
	}
	if o.TopK <= 0 {
		errs = append(errs, fmt.Errorf("top-k must be positive"))
	}
	if o.EmbeddingDim <= 0 {
		errs = append(errs, fmt.Errorf("embedding-dim must be positive"))
	}
	if o.IndexWorkers <= 0 {
		errs = append(errs, fmt.Errorf("index-workers must be positive"))
	}
	return errs
}

// Complete completes the assist options with defaults.
func (o *Options) Complete() error {
	if o.Enhancer == nil {
		o.Enhancer = NewEnhancerOptions()
	}
	if o.IndexWorkers == 0 {
		o.IndexWorkers = 4
	}
	return nil
}
