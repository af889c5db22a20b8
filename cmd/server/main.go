// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docqa-go/internal/chunker"
	"docqa-go/internal/config"
	"docqa-go/internal/extract"
	"docqa-go/internal/handler"
	"docqa-go/internal/middleware"
	"docqa-go/internal/repository"
	"docqa-go/internal/retrieval"
	"docqa-go/internal/service"
	"docqa-go/pkg/database"
	"docqa-go/pkg/embedding"
	"docqa-go/pkg/es"
	"docqa-go/pkg/llm"
	"docqa-go/pkg/log"
	"docqa-go/pkg/storage"
	"docqa-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// 1. 加载 .env 并初始化配置
	_ = godotenv.Load()
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}
	warnings := config.Init(configPath)
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")
	for _, w := range warnings {
		log.Warn(w)
	}

	ctx := context.Background()

	// 3. 初始化检索后端: 配置了向量路径时用 Elasticsearch, 否则用内存关键词索引
	var store retrieval.Store
	if cfg.VectorEnabled() {
		esClient, err := es.NewClient(cfg.Elasticsearch)
		if err != nil {
			log.Fatal("Elasticsearch 初始化失败", err)
		}
		embedder, err := embedding.NewEmbedder(ctx, cfg.AI, cfg.Elasticsearch.Dimensions)
		if err != nil {
			log.Fatal("Embedding 客户端初始化失败", err)
		}
		store = retrieval.NewESStore(esClient, embedder, cfg.Elasticsearch.IndexName, cfg.Retrieval.SimilarityThreshold)
	} else {
		store = retrieval.NewKeywordStore(cfg.Retrieval.IncludeZeroScores)
	}
	log.Infof("检索后端: %s", store.Name())

	// 4. 初始化文档注册表: MySQL 或内存
	var docRepo repository.DocumentRepository
	if cfg.Database.Enabled {
		db, err := database.NewMySQL(cfg.Database.DSN)
		if err != nil {
			log.Fatal("MySQL 初始化失败", err)
		}
		docRepo, err = repository.NewMySQLDocumentRepository(db)
		if err != nil {
			log.Fatal("文档表迁移失败", err)
		}
	} else {
		docRepo = repository.NewMemoryDocumentRepository()
	}

	// 5. 初始化会话存储: Redis 或内存
	var sessionRepo repository.SessionRepository
	if cfg.Redis.Enabled {
		rdb, err := database.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Redis 初始化失败", err)
		}
		sessionRepo = repository.NewRedisSessionRepository(rdb, cfg.Redis.SessionTTL, cfg.Redis.MaxHistory)
	} else {
		sessionRepo = repository.NewMemorySessionRepository()
	}

	// 6. 初始化原始文件归档
	var blobs storage.BlobStore
	var err error
	if cfg.Storage.Backend == "minio" {
		blobs, err = storage.NewMinioStore(cfg.Storage.MinIO)
	} else {
		blobs, err = storage.NewLocalStore(cfg.Upload.Dir)
	}
	if err != nil {
		log.Fatal("文件归档初始化失败", err)
	}

	// 7. 初始化生成式模型提供方, 未配置时走模板回答模式
	var provider llm.Provider
	if cfg.AIEnabled() {
		provider, err = llm.NewProvider(ctx, cfg.AI)
		if err != nil {
			log.Fatal("模型提供方初始化失败", err)
		}
		log.Infof("生成模式: %s", provider.Name())
	} else {
		log.Info("未配置模型提供方, 使用模板回答模式")
	}

	// 8. 初始化 Service (依赖注入)
	ingestService := service.NewIngestService(
		cfg.Upload,
		extract.NewExtractor(cfg.Extract),
		chunker.New(cfg.Chunking.Size, cfg.Chunking.Overlap),
		store,
		docRepo,
		blobs,
	)
	chatService := service.NewChatService(cfg.Retrieval, store, provider, docRepo, sessionRepo)
	documentService := service.NewDocumentService(store, provider, docRepo, sessionRepo, blobs)

	handlers := &handler.Handlers{
		Upload:   handler.NewUploadHandler(ingestService),
		Chat:     handler.NewChatHandler(chatService),
		Document: handler.NewDocumentHandler(documentService),
		Session:  handler.NewSessionHandler(chatService),
		System:   handler.NewSystemHandler(documentService, provider != nil),
	}

	// 9. 可选的 API 鉴权
	var authGuard gin.HandlerFunc
	if cfg.Auth.Enabled {
		jwtManager := token.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		handlers.Auth = handler.NewAuthHandler(service.NewAuthService(cfg.Auth, jwtManager))
		authGuard = middleware.APIAuth(jwtManager)
		log.Info("API 鉴权已开启")
	}

	// 10. 后台导入种子目录, 已入库的文件会跳过
	if cfg.Upload.SeedDir != "" {
		seedCtx, cancelSeed := context.WithCancel(ctx)
		defer cancelSeed()
		go ingestService.IngestDirectory(seedCtx, cfg.Upload.SeedDir)
	}

	// 11. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	// 添加我们自定义的日志中间件、CORS 和 Gin 的 Recovery 中间件
	r.Use(middleware.RequestLogger(), middleware.CORS(), gin.Recovery())

	// 12. 注册路由
	handler.RegisterRoutes(r, handlers, authGuard)

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 关闭 HTTP 服务器
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}
	log.Info("服务已优雅关闭")
}
