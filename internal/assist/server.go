// Package assist 提供 Camos 智能助手服务的组装与启动。
package assist

import (
	"context"
	"fmt"
	"time"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/camos-io/camos-assist/internal/assist/biz"
	"github.com/camos-io/camos-assist/internal/assist/faq"
	"github.com/camos-io/camos-assist/internal/assist/handler"
	"github.com/camos-io/camos-assist/internal/assist/router"
	"github.com/camos-io/camos-assist/internal/assist/store"
	"github.com/camos-io/camos-assist/internal/assist/user"
	"github.com/camos-io/camos-assist/internal/pkg/assist/enhancer"
	"github.com/camos-io/camos-assist/pkg/component/database"
	"github.com/camos-io/camos-assist/pkg/component/milvus"
	"github.com/camos-io/camos-assist/pkg/component/redis"
	"github.com/camos-io/camos-assist/pkg/extract"
	"github.com/camos-io/camos-assist/pkg/infra/app"
	"github.com/camos-io/camos-assist/pkg/infra/middleware"
	"github.com/camos-io/camos-assist/pkg/infra/pool"
	"github.com/camos-io/camos-assist/pkg/infra/server"
	"github.com/camos-io/camos-assist/pkg/llm"
	"github.com/camos-io/camos-assist/pkg/llm/prompt"
	"github.com/camos-io/camos-assist/pkg/security/auth/jwt"

	// 导入 LLM 供应商以自动注册
	_ "github.com/camos-io/camos-assist/pkg/llm/ollama"
	_ "github.com/camos-io/camos-assist/pkg/llm/openai"

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

// Name is the name of the application.
const Name = "camos-assist"

// sidecarTimeout OCR 与表格抽取服务的请求超时。
const sidecarTimeout = 120 * time.Second

// Config contains application-related configurations.
type Config struct {
	HTTPOptions      *httpopts.Options
	LogOptions       *logopts.Options
	MilvusOptions    *milvusopts.Options
	DatabaseOptions  *dbopts.Options
	EmbeddingOptions *llmopts.ProviderOptions
	ChatOptions      *llmopts.ProviderOptions
	AssistOptions    *assistopts.Options
	FAQOptions       *faqopts.Options
	CacheOptions     *cacheopts.Options
	JWTOptions       *jwtopts.Options
	AuthOptions      *authopts.Options
}

// Server 组装后的助手服务。
type Server struct {
	srv     *server.Server
	closers []func()
}

// NewServer initializes and returns a new Server instance.
func (cfg *Config) NewServer(ctx context.Context) (*Server, error) {
	printBanner(cfg)

	var closers []func()

	// 1. 初始化日志
	cfg.LogOptions.AddInitialField("service.name", Name)
	cfg.LogOptions.AddInitialField("service.version", app.GetVersion())
	if err := cfg.LogOptions.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting assist service...")

	// 2. 初始化向量存储：Milvus 或内存实现
	var vectorStore store.VectorStore
	if cfg.MilvusOptions.Enabled {
		milvusClient, err := milvus.New(cfg.MilvusOptions)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize milvus: %w", err)
		}
		closers = append(closers, func() { _ = milvusClient.Close(context.Background()) })
		vectorStore = store.NewMilvusStore(milvusClient)
		logger.Infow("Milvus vector store initialized", "address", cfg.MilvusOptions.Address)
	} else {
		vectorStore = store.NewMemoryStore()
		logger.Warn("Milvus 未启用，使用内存向量存储（重启后数据丢失）")
	}
	closers = append(closers, func() { _ = vectorStore.Close(context.Background()) })

	// 3. 初始化查询缓存（Redis，可选）
	var queryCache *biz.QueryCache
	var redisCache *goredis.Client
	var redisComponent *redis.Client
	if cfg.CacheOptions.Enabled {
		redisClient, err := redis.NewWithContext(ctx, cfg.CacheOptions.Redis)
		if err != nil {
			logger.Warnw("failed to connect to redis, cache will be disabled", "error", err.Error())
		} else {
			closers = append(closers, func() { _ = redisClient.Close() })
			redisComponent = redisClient
			redisCache = redisClient.Client()
			queryCache = biz.NewQueryCache(redisCache, &biz.QueryCacheConfig{
				Enabled:   true,
				TTL:       cfg.CacheOptions.TTL,
				KeyPrefix: cfg.CacheOptions.KeyPrefix,
			})
			logger.Infow("Redis query cache initialized",
				"addr", cfg.CacheOptions.Redis.Addr(),
				"ttl", cfg.CacheOptions.TTL,
			)
		}
	} else {
		logger.Info("Query cache is disabled")
	}

	// 4. 初始化 LLM 供应商
	embedProvider, err := llm.NewEmbeddingProvider(cfg.EmbeddingOptions.Provider, cfg.EmbeddingOptions.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	logger.Infow("Embedding provider initialized",
		"provider", cfg.EmbeddingOptions.Provider,
		"model", cfg.EmbeddingOptions.Model,
	)
	if redisCache != nil {
		embedProvider = llm.NewCachedEmbeddingProvider(embedProvider, redisCache, nil)
		logger.Info("Embedding cache enabled")
	}

	chatProvider, err := llm.NewChatProvider(cfg.ChatOptions.Provider, cfg.ChatOptions.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat provider: %w", err)
	}
	logger.Infow("Chat provider initialized",
		"provider", cfg.ChatOptions.Provider,
		"model", cfg.ChatOptions.Model,
	)

	// 5. 初始化提示词模板管理器（文件变更热加载）
	promptManager, err := prompt.NewManager(cfg.AssistOptions.PromptFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}
	if err := promptManager.Watch(); err != nil {
		logger.Warnw("提示词模板热加载不可用", "error", err.Error())
	}
	closers = append(closers, func() { _ = promptManager.Close() })

	// 6. 初始化入库协程池
	ingestPool, err := pool.NewPool("assist-ingest", pool.IngestPool,
		pool.IngestPoolConfig(cfg.AssistOptions.IndexWorkers))
	if err != nil {
		return nil, fmt.Errorf("failed to create ingest pool: %w", err)
	}
	closers = append(closers, ingestPool.Release)

	// 7. 初始化文档抽取辅助客户端（可选）
	var ocrClient extract.OCRClient
	if cfg.AssistOptions.OCREndpoint != "" {
		ocrClient = extract.NewOCRClient(cfg.AssistOptions.OCREndpoint, sidecarTimeout)
		logger.Infow("OCR client initialized", "endpoint", cfg.AssistOptions.OCREndpoint)
	}
	var tableClient extract.TableClient
	if cfg.AssistOptions.TableEndpoint != "" {
		tableClient = extract.NewTableClient(cfg.AssistOptions.TableEndpoint, sidecarTimeout)
		logger.Infow("Table extraction client initialized", "endpoint", cfg.AssistOptions.TableEndpoint)
	}

	// 8. 初始化 Biz 层
	indexer := biz.NewIndexer(vectorStore, embedProvider, ocrClient, tableClient, ingestPool, &biz.IndexerConfig{
		ChunkSize:    cfg.AssistOptions.ChunkSize,
		ChunkOverlap: cfg.AssistOptions.ChunkOverlap,
		Collection:   cfg.AssistOptions.Collection,
		EmbeddingDim: cfg.AssistOptions.EmbeddingDim,
		DataDir:      cfg.AssistOptions.DataDir,
		OCRMinChars:  cfg.AssistOptions.OCRMinChars,
	})
	retriever := biz.NewRetriever(vectorStore, embedProvider, chatProvider, promptManager, &biz.RetrieverConfig{
		TopK:       cfg.AssistOptions.TopK,
		Collection: cfg.AssistOptions.Collection,
		Enhancer: enhancer.Config{
			EnableQueryRewrite: cfg.AssistOptions.Enhancer.EnableQueryRewrite,
			EnableHyDE:         cfg.AssistOptions.Enhancer.EnableHyDE,
			EnableRerank:       cfg.AssistOptions.Enhancer.EnableRerank,
			EnableRepacking:    cfg.AssistOptions.Enhancer.EnableRepacking,
			RerankTopK:         cfg.AssistOptions.Enhancer.RerankTopK,
		},
	})
	generator := biz.NewGenerator(chatProvider, promptManager)
	debugger := biz.NewDebugger(chatProvider, promptManager)
	assistService := biz.NewAssistService(indexer, retriever, generator, debugger, queryCache,
		vectorStore, embedProvider, chatProvider, &biz.ServiceConfig{
			Collection:    cfg.AssistOptions.Collection,
			AllowDegraded: cfg.AssistOptions.AllowDegraded,
		})
	logger.Infow("Assist service initialized",
		"cache.enabled", cfg.CacheOptions.Enabled,
		"enhancer.query_rewrite", cfg.AssistOptions.Enhancer.EnableQueryRewrite,
		"enhancer.hyde", cfg.AssistOptions.Enhancer.EnableHyDE,
		"enhancer.rerank", cfg.AssistOptions.Enhancer.EnableRerank,
		"allow_degraded", cfg.AssistOptions.AllowDegraded,
	)

	// 9. 初始化 FAQ 服务
	faqStore := faq.NewStore(cfg.FAQOptions.FAQFile, cfg.FAQOptions.PendingFile)
	faqService := faq.NewService(faqStore)
	logger.Infow("FAQ service initialized",
		"faq_file", cfg.FAQOptions.FAQFile,
		"pending_file", cfg.FAQOptions.PendingFile,
	)

	// 10. 初始化用户存储与认证
	dbClient, err := database.NewWithContext(ctx, cfg.DatabaseOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	closers = append(closers, func() { _ = dbClient.Close() })

	userStore := user.NewStore(dbClient.DB())
	if err := userStore.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate user schema: %w", err)
	}

	signerOpts := []jwt.Option{jwt.WithOptions(cfg.JWTOptions)}
	if redisComponent != nil {
		// Redis 可用时令牌吊销在实例间共享
		signerOpts = append(signerOpts, jwt.WithStore(jwt.NewRedisStore(redisComponent, "assist:revoked:")))
	}
	signer, err := jwt.New(signerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize jwt authenticator: %w", err)
	}
	userService := user.NewService(userStore, signer, cfg.AuthOptions.AccessCodeHash)
	logger.Infow("User service initialized",
		"engine", cfg.DatabaseOptions.Engine,
		"access_code", cfg.AuthOptions.AccessCodeHash != "",
	)

	// 11. 初始化 Handler 层
	assistHandler := handler.NewAssistHandler(assistService)
	faqHandler := handler.NewFAQHandler(faqService)
	authHandler := handler.NewAuthHandler(userService)

	// 12. 初始化服务器并注册路由
	httpServer := server.New(cfg.HTTPOptions, middleware.Auth(middleware.AuthConfig{
		Authenticator: signer,
		SkipPaths:     router.AuthSkipPaths(),
	}))
	router.Register(httpServer.Engine(), assistHandler, faqHandler, authHandler)

	logger.Info("Assist service is ready")
	return &Server{
		srv:     httpServer,
		closers: closers,
	}, nil
}

// Run starts the server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	defer runClosers(s.closers)
	return s.srv.Start(ctx)
}

// runClosers 逆序执行关闭函数，后创建的资源先释放。
func runClosers(closers []func()) {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}

func printBanner(cfg *Config) {
	fmt.Printf("Starting %s...\n", Name)
	fmt.Printf("  Embedding: %s (%s)\n", cfg.EmbeddingOptions.Provider, cfg.EmbeddingOptions.Model)
	fmt.Printf("  Chat: %s (%s)\n", cfg.ChatOptions.Provider, cfg.ChatOptions.Model)
}
