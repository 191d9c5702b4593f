package config

// Config 配置主体
type Config struct {
	Server          ServerConfig            `mapstructure:"server"`
	DB              DBConfig                `mapstructure:"database"`
	Redis           RedisConfig             `mapstructure:"redis"`
	Mongo           MongoConfig             `mapstructure:"mongo"`
	MinIO           MinIOConfig             `mapstructure:"minio"`
	Elastic         ElasticConfig           `mapstructure:"elastic"`
	Logstash        LogstashConfig          `mapstructure:"logstash"`
	Security        SecurityConfig          `mapstructure:"security"`
	Payment         PaymentConfig           `mapstructure:"payment"`
	Seed            SeedConfig              `mapstructure:"seed"`
	Kafka           KafkaConfig             `mapstructure:"kafka"`
	KafkaChangeFeed KafkaChangeFeedConsumer `mapstructure:"kafka_change_feed_consumer"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DBConfig 数据库配置
type DBConfig struct {
	Driver      string `mapstructure:"driver"` // mysql | postgres
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type MongoConfig struct {
	URL            string `mapstructure:"url"`
	Database       string `mapstructure:"database"`
	MaxPoolSize    uint64 `mapstructure:"max_pool_size"`
	ConnectTimeout int    `mapstructure:"connect_timeout"` // 秒
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	InternalEndpoint string `mapstructure:"internal_endpoint"`
	ExternalEndpoint string `mapstructure:"external_endpoint"`
	AccessKey        string `mapstructure:"access_key"`
	SecretKey        string `mapstructure:"secret_key"`
	MainBucket       string `mapstructure:"main_bucket"`
	InternalUseSSL   bool   `mapstructure:"internal_use_ssl"`
	ExternalUseSSL   bool   `mapstructure:"external_use_ssl"`
}

// ElasticConfig Elastic配置，Address 为空时搜索退化为数据库模糊查询
type ElasticConfig struct {
	Address  string         `mapstructure:"address"`
	Username string         `mapstructure:"username"`
	Password string         `mapstructure:"password"`
	Indices  ElasticIndices `mapstructure:"indices"`
}

// ElasticIndices Elastic索引
type ElasticIndices struct {
	PostIndex string `mapstructure:"post_index"`
}

type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

type SecurityConfig struct {
	JWTSecret   string `mapstructure:"jwt_secret"`
	JWTTTLHours int    `mapstructure:"jwt_ttl_hours"`
	BcryptCost  int    `mapstructure:"bcrypt_cost"`
}

// PaymentConfig 支付服务商配置
type PaymentConfig struct {
	URL           string `mapstructure:"url"`
	ApiKey        string `mapstructure:"api_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	SuccessURL    string `mapstructure:"success_url"`
	CancelURL     string `mapstructure:"cancel_url"`
	PeriodDays    int    `mapstructure:"period_days"`
}

type SeedConfig struct {
	BotCount        int `mapstructure:"bot_count"`
	PostsPerChannel int `mapstructure:"posts_per_channel"`
}

type KafkaConfig struct {
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int  `mapstructure:"session_timeout"`
	HeartbeatInterval int  `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int  `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int  `mapstructure:"max_processing_time"`
	FromOldest        bool `mapstructure:"from_oldest"`
}

// KafkaChangeFeedConsumer Canal 变更数据消费者
type KafkaChangeFeedConsumer struct {
	Topics  []string `mapstructure:"topics"`
	GroupID string   `mapstructure:"group_id"`
}
