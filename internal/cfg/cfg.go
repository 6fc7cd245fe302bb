package cfg

import (
	"crypto/rand"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/DRSN-tech/feedconv/pkg/e"
	"github.com/DRSN-tech/feedconv/pkg/logger"
	"github.com/jimlawless/whereami"
)

// Config собирается один раз при старте и передается компонентам явно.
// Db, Redis, Minio и Kafka равны nil, если соответствующая инфраструктура не настроена.
type Config struct {
	Http       *HTTPConfig
	Grpc       *GRPCConfig
	Feed       *FeedCfg
	Auth       *AuthCfg
	BaseLinker *BaseLinkerCfg
	Db         *PGDBCfg
	Redis      *RedisCfg
	Minio      *MinIOCfg
	Kafka      *KafkaCfg
	Suppliers  []domain.Supplier
}

type HTTPConfig struct {
	Port               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	CORSAllowedOrigins []string
}

type GRPCConfig struct {
	Port        string
	NetworkMode string
}

type FeedCfg struct {
	FetchTimeout   time.Duration // таймаут одной попытки загрузки фида
	MaxBytes       int64         // предел размера фида по URL
	UploadMaxBytes int64         // предел размера загружаемого файла
	SuppliersFile  string        // пусто — встроенный реестр
}

type AuthCfg struct {
	Password      string // пусто — доступ открыт
	SessionSecret []byte
	SessionTTL    time.Duration
}

type BaseLinkerCfg struct {
	Token         string // пусто — API не настроен
	InventoryID   int64
	URL           string
	Timeout       time.Duration
	RatePerMinute int
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	KeyPrefix   string
}

type MinIOCfg struct {
	MinioEndpoint     string // Адрес конечной точки Minio
	BucketName        string // Бакет для архива CSV-выгрузок
	MinioRootUser     string // Имя пользователя для доступа к Minio
	MinioRootPassword string // Пароль для доступа к Minio
	MinioUseSSL       bool
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

// Configured сообщает, задан ли токен BaseLinker.
func (b *BaseLinkerCfg) Configured() bool {
	return b != nil && b.Token != ""
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	feed, err := loadFeedCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	auth, err := loadAuthCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	baselinker, err := loadBaseLinkerCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	db, err := loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if kafka != nil && db == nil {
		return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("KAFKA_BROKERS requires POSTGRES_DB: events are published through the outbox"))
	}

	suppliers, err := LoadSuppliers(feed.SuppliersFile)
	if err != nil {
		log.Errorf(err, "failed to load suppliers registry")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Http:       http,
		Grpc:       loadGRPCConfig(),
		Feed:       feed,
		Auth:       auth,
		BaseLinker: baselinker,
		Db:         db,
		Redis:      redis,
		Minio:      minio,
		Kafka:      kafka,
		Suppliers:  suppliers,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 15 * time.Second
		defaultWriteTimeout = 60 * time.Second // загрузка фида поставщика может занимать до 30s
		defaultIdleTimeout  = 60 * time.Second
		defaultCORSOrigins  = "*"
	)

	port := getEnvOrDefault("HTTP_PORT", defaultPort)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	return &HTTPConfig{
		Port:               port,
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		IdleTimeout:        idleTimeout,
		CORSAllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", defaultCORSOrigins)),
	}, nil
}

func loadGRPCConfig() *GRPCConfig {
	const (
		defaultPort        = "8091"
		defaultNetworkMode = "tcp"
	)

	return &GRPCConfig{
		Port:        getEnvOrDefault("GRPC_PORT", defaultPort),
		NetworkMode: getEnvOrDefault("GRPC_NETWORK_MODE", defaultNetworkMode),
	}
}

func loadFeedCfg(log logger.Logger) (*FeedCfg, error) {
	const (
		defaultFetchTimeout   = 30 * time.Second
		defaultMaxBytes       = 64 << 20
		defaultUploadMaxBytes = 32 << 20
	)

	fetchTimeout, err := parseDurationEnv("FEED_FETCH_TIMEOUT", defaultFetchTimeout)
	if err != nil {
		log.Errorf(err, "invalid FEED_FETCH_TIMEOUT")
		return nil, err
	}

	maxBytes, err := parseIntEnv("FEED_MAX_BYTES", defaultMaxBytes)
	if err != nil {
		log.Errorf(err, "invalid FEED_MAX_BYTES")
		return nil, e.Wrap("FEED_MAX_BYTES", err)
	}

	uploadMaxBytes, err := parseIntEnv("UPLOAD_MAX_BYTES", defaultUploadMaxBytes)
	if err != nil {
		log.Errorf(err, "invalid UPLOAD_MAX_BYTES")
		return nil, e.Wrap("UPLOAD_MAX_BYTES", err)
	}

	return &FeedCfg{
		FetchTimeout:   fetchTimeout,
		MaxBytes:       int64(maxBytes),
		UploadMaxBytes: int64(uploadMaxBytes),
		SuppliersFile:  getEnv("SUPPLIERS_FILE"),
	}, nil
}

func loadAuthCfg(log logger.Logger) (*AuthCfg, error) {
	const (
		defaultSessionTTL = 12 * time.Hour
		secretLen         = 32
	)

	ttl, err := parseDurationEnv("SESSION_TTL", defaultSessionTTL)
	if err != nil {
		log.Errorf(err, "invalid SESSION_TTL")
		return nil, err
	}

	secret := []byte(getEnv("SESSION_SECRET"))
	if len(secret) == 0 {
		// сессии переживают только текущий процесс
		secret = make([]byte, secretLen)
		if _, err := rand.Read(secret); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
	}

	password := getEnv("APP_PASSWORD")
	if password == "" {
		log.Warnf("APP_PASSWORD is not set, access is open")
	}

	return &AuthCfg{
		Password:      password,
		SessionSecret: secret,
		SessionTTL:    ttl,
	}, nil
}

func loadBaseLinkerCfg(log logger.Logger) (*BaseLinkerCfg, error) {
	const (
		defaultInventoryID   = "81501"
		defaultURL           = "https://api.baselinker.com/connector.php"
		defaultTimeout       = 30 * time.Second
		defaultRatePerMinute = 100
	)

	inventoryID, err := strconv.ParseInt(getEnvOrDefault("BASELINKER_INVENTORY_ID", defaultInventoryID), 10, 64)
	if err != nil {
		log.Errorf(err, "invalid BASELINKER_INVENTORY_ID")
		return nil, e.Wrap("BASELINKER_INVENTORY_ID", e.ErrIncorrectEnvVariable)
	}

	timeout, err := parseDurationEnv("BASELINKER_TIMEOUT", defaultTimeout)
	if err != nil {
		log.Errorf(err, "invalid BASELINKER_TIMEOUT")
		return nil, err
	}

	rate, err := parseIntEnv("BASELINKER_RATE_PER_MINUTE", defaultRatePerMinute)
	if err != nil || rate <= 0 {
		log.Errorf(err, "invalid BASELINKER_RATE_PER_MINUTE")
		return nil, e.Wrap("BASELINKER_RATE_PER_MINUTE", e.ErrIncorrectEnvVariable)
	}

	token := getEnv("BASELINKER_TOKEN")
	if token == "" {
		log.Warnf("BASELINKER_TOKEN is not set, BaseLinker commands are disabled")
	}

	return &BaseLinkerCfg{
		Token:         token,
		InventoryID:   inventoryID,
		URL:           getEnvOrDefault("BASELINKER_URL", defaultURL),
		Timeout:       timeout,
		RatePerMinute: rate,
	}, nil
}

// loadPGDBCfg возвращает nil, если POSTGRES_DB не задан: журнал конвертаций выключен.
func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost    = "localhost"
		defaultPort    = "5432"
		defaultSSLMode = "disable"
	)

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		log.Infof("POSTGRES_DB is not set, conversion history is disabled")
		return nil, nil
	}

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	return &PGDBCfg{
		Host:     getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:     getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:     user,
		Password: password,
		DBName:   dbName,
		SSLMode:  getEnvOrDefault("SSL_MODE", defaultSSLMode),
	}, nil
}

// loadRedisCfg возвращает nil без REDIS_ADDR: лимит BaseLinker считается локально.
func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
		defaultKeyPrefix    = "feedconv"
	)

	addr := getEnv("REDIS_ADDR")
	if addr == "" {
		return nil, nil
	}

	db, err := parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	timeout := readTimeout
	if writeTimeout > timeout {
		timeout = writeTimeout
	}

	return &RedisCfg{
		Addr:        addr,
		Password:    getEnv("REDIS_PASSWORD"),
		User:        getEnv("REDIS_USER"),
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     timeout,
		KeyPrefix:   getEnvOrDefault("REDIS_KEY_PREFIX", defaultKeyPrefix),
	}, nil
}

// loadMinIOCfg возвращает nil без BUCKET_NAME: архив выгрузок выключен.
func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL   = false
		defaultEndpoint = "minio:9000"
	)

	bucket := getEnv("BUCKET_NAME")
	if bucket == "" {
		return nil, nil
	}

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", strconv.FormatBool(defaultUseSSL)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	return &MinIOCfg{
		MinioEndpoint:     getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint),
		BucketName:        bucket,
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
	}, nil
}

// loadKafkaCfg возвращает nil без KAFKA_BROKERS: события о конвертациях не публикуются.
func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
	)

	brokerStr := getEnv("KAFKA_BROKERS")
	if brokerStr == "" {
		return nil, nil
	}

	topic := getEnv("KAFKA_TOPIC")
	if topic == "" {
		return nil, fmt.Errorf("KAFKA_TOPIC environment variable is required")
	}

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	return &KafkaCfg{
		Brokers:           splitList(brokerStr),
		Topic:             topic,
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
	}, nil
}

// DSN собирает строку подключения к PostgreSQL.
func (c *PGDBCfg) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.DBName,
		c.SSLMode,
	)
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}
