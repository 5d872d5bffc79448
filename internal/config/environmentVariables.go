package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD                         = false
	LOG_LEVEL_PROD                  = slog.LevelInfo
	FALLBACK_REDIS_TO_INTERNALSTORE = true //if redis init fails, it falls back to an internals in-memory store
	TRACE_ID_KEY                    = "traceId"
	RATE_LIMIT_PER_SECOND           = 2
	BURST_RATE_LIMIT_PER_SECOND     = 5

	//chunking
	DefaultChunkSize    = 1000 //words
	DefaultChunkOverlap = 200
	EmbeddingBatchSize  = 100

	//retrieval
	DefaultTopKResults   = 5
	MaxSourcesInResponse = 5
	AnswerConfidence     = 85.0 //placeholder signal, not a probability

	//llm
	DefaultLLMProvider  = "openai"
	DefaultOpenAIModel  = "gpt-4.1-mini-2025-04-14"
	DefaultGeminiModel  = "gemini-2.5-flash-lite-preview-09-2025"
	DefaultMaxTokens    = 4000
	ResponseTokenLimit  = 2000
	DefaultTemperature  = 0.3
	ModelProbeTimeout   = 15 * time.Second
	LLMGenerateTimeout  = 90 * time.Second
	ModelContext        = "You are an expert analyst of business and real estate documents. Provide clear, accurate answers based on the provided context. Always cite your sources and be specific about what information comes from which document."
	QuestionTimeout     = 2 * time.Minute
	IngestFileTimeout   = 5 * time.Minute
	PDFPageReadTimeout  = 10 * time.Second
	MaxHistoryTurnsSent = 5

	//embeddings
	DefaultEmbeddingProvider = "local"
	DefaultLocalEmbedding    = "local-hash-384"
	DefaultLocalDimension    = 384
	OpenAIEmbeddingModel     = "text-embedding-3-small"
	OpenAIEmbeddingDimension = 1536
	GoogleEmbeddingModel     = "gemini-embedding-001"

	//EmbeddingOutputDimensionality is used when google embeddings are selected
	EmbeddingOutputDimensionality int32 = 1536
	EmbeddingDBName                     = "insight-chunks"

	//vectorDB
	DefaultVectorBackend    = "sqlite"
	SqliteIndexFile         = "index.db"
	QdrantConnectionTimeout = 30 * time.Second
	QdrantHost              = "localhost"
	QdrantGrpcPort          = 6334
	QdrantUseTLS            = false //set for https
	QdrantPoolSize          = 1     //2-5 is preferred for prod according to documentation

	//web search
	WebSearchTimeout     = 10 * time.Second
	WebSearchUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	DuckDuckGoBaseURL    = "https://html.duckduckgo.com"
	BingBaseURL          = "https://www.bing.com"
	WebRequestsPerSecond = 1
	WebSearchCacheTTL    = 30 * time.Minute

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 10 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	RedisAddr = "127.0.0.1:6379"

	//redis has 16 DB we can use
	RedisJobStore         = 0
	RedisMessageStore     = 1
	RedisSearchCacheStore = 2

	//redis timeouts
	RedisJobStoreTTL     = 24 * time.Hour
	RedisMessageStoreTTL = 24 * time.Hour

	//storage
	DefaultDataDir      = "./data"
	DefaultDocumentsDir = "./documents"
	DefaultVectorDBPath = "./data/vector_db"
	DefaultLogFile      = "./data/logs/app.log"
	DefaultLogLevel     = "INFO"
	UploadDirName       = "uploads"
)
