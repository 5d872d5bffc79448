package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	ErrMissingAPIKey   = errors.New("missing LLM API key")
	ErrInvalidSettings = errors.New("invalid settings")
)

// Settings is built once at startup and handed to every component that needs it.
type Settings struct {
	LLMProvider  string  `yaml:"llm_provider"`
	OpenAIAPIKey string  `yaml:"-"`
	GeminiAPIKey string  `yaml:"-"`
	OpenAIModel  string  `yaml:"openai_model"`
	GeminiModel  string  `yaml:"gemini_model"`
	OpenAIURL    string  `yaml:"openai_base_url"`
	MaxTokens    int     `yaml:"max_tokens"`
	Temperature  float64 `yaml:"temperature"`
	SystemPrompt string  `yaml:"system_prompt"`

	EmbeddingProvider  string `yaml:"embedding_provider"`
	EmbeddingModel     string `yaml:"embedding_model"`
	EmbeddingDimension int    `yaml:"embedding_dimension"`

	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	TopKResults  int `yaml:"top_k_results"`

	DataDir       string `yaml:"data_dir"`
	DocumentsDir  string `yaml:"documents_dir"`
	VectorDBPath  string `yaml:"vector_db_path"`
	VectorBackend string `yaml:"vector_backend"`
	QdrantHost    string `yaml:"qdrant_host"`
	QdrantPort    int    `yaml:"qdrant_port"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"-"`

	LogLevel  string `yaml:"log_level"`
	LogFile   string `yaml:"log_file"`
	LogFormat string `yaml:"log_format"`

	ListenAddr   string `yaml:"listen_addr"`
	AuthToken    string `yaml:"-"`
	NoAuthBypass bool   `yaml:"-"`
}

// Defaults returns the settings used when nothing is configured.
func Defaults() *Settings {
	return &Settings{
		LLMProvider:        DefaultLLMProvider,
		OpenAIModel:        DefaultOpenAIModel,
		GeminiModel:        DefaultGeminiModel,
		MaxTokens:          DefaultMaxTokens,
		Temperature:        DefaultTemperature,
		SystemPrompt:       ModelContext,
		EmbeddingProvider:  DefaultEmbeddingProvider,
		EmbeddingModel:     DefaultLocalEmbedding,
		EmbeddingDimension: DefaultLocalDimension,
		ChunkSize:          DefaultChunkSize,
		ChunkOverlap:       DefaultChunkOverlap,
		TopKResults:        DefaultTopKResults,
		DataDir:            DefaultDataDir,
		DocumentsDir:       DefaultDocumentsDir,
		VectorDBPath:       DefaultVectorDBPath,
		VectorBackend:      DefaultVectorBackend,
		QdrantHost:         QdrantHost,
		QdrantPort:         QdrantGrpcPort,
		RedisAddr:          RedisAddr,
		LogLevel:           DefaultLogLevel,
		LogFile:            DefaultLogFile,
		LogFormat:          "text",
		ListenAddr:         ServerListenAddr,
	}
}

// Load reads envFile (if present), an optional YAML file named by CONFIG_FILE and then
// the process environment, validates the result and creates the storage directories.
func Load(envFile string) (*Settings, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", envFile, err)
	}

	s := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := s.applyYAML(path); err != nil {
			return nil, err
		}
	}
	if err := s.applyEnv(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureDirectories(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) applyYAML(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, s); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (s *Settings) applyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	num := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	str("LLM_PROVIDER", &s.LLMProvider)
	str("OPENAI_API_KEY", &s.OpenAIAPIKey)
	str("GEMINI_API_KEY", &s.GeminiAPIKey)
	str("OPENAI_MODEL", &s.OpenAIModel)
	str("GEMINI_MODEL", &s.GeminiModel)
	str("OPENAI_BASE_URL", &s.OpenAIURL)
	num("MAX_TOKENS", &s.MaxTokens)
	str("SYSTEM_PROMPT", &s.SystemPrompt)
	if v := os.Getenv("TEMPERATURE"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("TEMPERATURE: %w", err))
		} else {
			s.Temperature = t
		}
	}

	str("EMBEDDING_PROVIDER", &s.EmbeddingProvider)
	str("EMBEDDING_MODEL", &s.EmbeddingModel)
	num("EMBEDDING_DIMENSION", &s.EmbeddingDimension)

	num("CHUNK_SIZE", &s.ChunkSize)
	num("CHUNK_OVERLAP", &s.ChunkOverlap)
	num("TOP_K_RESULTS", &s.TopKResults)

	str("DATA_DIR", &s.DataDir)
	str("DOCUMENTS_DIR", &s.DocumentsDir)
	str("VECTOR_DB_PATH", &s.VectorDBPath)
	str("VECTOR_BACKEND", &s.VectorBackend)
	str("QDRANT_HOST", &s.QdrantHost)
	num("QDRANT_PORT", &s.QdrantPort)

	str("REDIS_ADDR", &s.RedisAddr)
	str("REDIS_PASSWORD", &s.RedisPassword)

	str("LOG_LEVEL", &s.LogLevel)
	str("LOG_FILE", &s.LogFile)
	str("LOG_FORMAT", &s.LogFormat)

	str("LISTEN_ADDR", &s.ListenAddr)
	str("API_AUTH_TOKEN", &s.AuthToken)
	s.NoAuthBypass = s.AuthToken == ""

	s.LLMProvider = strings.ToLower(s.LLMProvider)
	s.EmbeddingProvider = strings.ToLower(s.EmbeddingProvider)
	s.VectorBackend = strings.ToLower(s.VectorBackend)
	s.applyProviderDefaults()

	return errors.Join(errs...)
}

// applyProviderDefaults swaps the local embedding defaults for the remote provider's
// when only the provider was changed.
func (s *Settings) applyProviderDefaults() {
	if s.EmbeddingModel != DefaultLocalEmbedding {
		return
	}
	switch s.EmbeddingProvider {
	case "openai":
		s.EmbeddingModel = OpenAIEmbeddingModel
		if s.EmbeddingDimension == DefaultLocalDimension {
			s.EmbeddingDimension = OpenAIEmbeddingDimension
		}
	case "google":
		s.EmbeddingModel = GoogleEmbeddingModel
		if s.EmbeddingDimension == DefaultLocalDimension {
			s.EmbeddingDimension = int(EmbeddingOutputDimensionality)
		}
	}
}

// Validate reports the first class of misconfiguration that would make the system unusable.
func (s *Settings) Validate() error {
	switch s.LLMProvider {
	case "openai":
		if s.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY is required", ErrMissingAPIKey)
		}
	case "gemini":
		if s.GeminiAPIKey == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY is required", ErrMissingAPIKey)
		}
	default:
		return fmt.Errorf("%w: unknown LLM_PROVIDER %q", ErrInvalidSettings, s.LLMProvider)
	}

	switch s.EmbeddingProvider {
	case "local":
	case "openai":
		if s.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY is required for openai embeddings", ErrMissingAPIKey)
		}
	case "google":
		if s.GeminiAPIKey == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY is required for google embeddings", ErrMissingAPIKey)
		}
	default:
		return fmt.Errorf("%w: unknown EMBEDDING_PROVIDER %q", ErrInvalidSettings, s.EmbeddingProvider)
	}

	switch s.VectorBackend {
	case "sqlite", "qdrant":
	default:
		return fmt.Errorf("%w: unknown VECTOR_BACKEND %q", ErrInvalidSettings, s.VectorBackend)
	}

	if s.ChunkSize <= 0 || s.ChunkOverlap < 0 || s.ChunkOverlap >= s.ChunkSize {
		return fmt.Errorf("%w: CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", ErrInvalidSettings, s.ChunkOverlap, s.ChunkSize)
	}
	if s.TopKResults <= 0 {
		return fmt.Errorf("%w: TOP_K_RESULTS must be positive", ErrInvalidSettings)
	}
	if s.EmbeddingDimension <= 0 {
		return fmt.Errorf("%w: EMBEDDING_DIMENSION must be positive", ErrInvalidSettings)
	}
	return nil
}

func (s *Settings) ensureDirectories() error {
	dirs := []string{s.DataDir, s.DocumentsDir, s.VectorDBPath}
	if s.LogFile != "" {
		dirs = append(dirs, filepath.Dir(s.LogFile))
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// UploadDir is where documents received over HTTP are staged before ingestion.
func (s *Settings) UploadDir() string {
	return filepath.Join(s.DataDir, UploadDirName)
}
