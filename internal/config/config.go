package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App       App       `yaml:"app"`
	Log       Log       `yaml:"log"`
	Metrics   Metrics   `yaml:"metrics"`
	Kafka     Kafka     `yaml:"kafka"`
	Spatial   Spatial   `yaml:"spatial"`
	Analytics Analytics `yaml:"analytics"`
	Redis     Redis     `yaml:"redis"`
	Generator Generator `yaml:"generator"`
	Pipeline  Pipeline  `yaml:"pipeline"`
}

type App struct {
	Name    string `yaml:"name" env:"APP_NAME" env-default:"nearyou-consumer"`
	Version string `yaml:"version" env:"APP_VERSION" env-default:"1.0.0"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type Metrics struct {
	Addr string `yaml:"addr" env:"METRICS_ADDR" env-default:":9091"`
}

type Kafka struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	Topic   string   `yaml:"topic" env:"KAFKA_TOPIC" env-default:"gps_stream"`
	GroupID string   `yaml:"group_id" env:"KAFKA_GROUP_ID" env-default:"gps_consumers_group"`
	// StartOffset picks where a brand-new consumer group begins:
	// "earliest" replays the topic, "latest" tails live fixes.
	StartOffset string `yaml:"start_offset" env:"KAFKA_START_OFFSET" env-default:"earliest"`
	// NotifyTopic, when set, receives enriched events that carry a
	// notification so the dashboard relay can push them live.
	NotifyTopic string `yaml:"notify_topic" env:"KAFKA_NOTIFY_TOPIC" env-default:""`
}

// Spatial is the PostGIS database holding the shops table.
type Spatial struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER" env-default:"nearuser"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD" env-default:""`
	DBName   string `yaml:"dbname" env:"POSTGRES_DB" env-default:"near_you_shops"`
}

// Analytics is the database holding user profiles, enriched events and
// simulated visits.
type Analytics struct {
	Host     string `yaml:"host" env:"ANALYTICS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"ANALYTICS_PORT" env-default:"5433"`
	User     string `yaml:"user" env:"ANALYTICS_USER" env-default:"nearuser"`
	Password string `yaml:"password" env:"ANALYTICS_PASSWORD" env-default:""`
	DBName   string `yaml:"dbname" env:"ANALYTICS_DB" env-default:"nearyou"`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:""`
	Password string `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Generator struct {
	URL               string        `yaml:"url" env:"MESSAGE_GENERATOR_URL" env-default:"http://message-generator:8001/generate"`
	Timeout           time.Duration `yaml:"timeout" env:"MESSAGE_GENERATOR_TIMEOUT" env-default:"10s"`
	RequestsPerMinute int           `yaml:"requests_per_minute" env:"MESSAGE_GENERATOR_RPM" env-default:"120"`
}

type Pipeline struct {
	Workers        int           `yaml:"workers" env:"PIPELINE_WORKERS" env-default:"4"`
	QueueSize      int           `yaml:"queue_size" env:"PIPELINE_QUEUE_SIZE" env-default:"256"`
	MaxPOIDistance float64       `yaml:"max_poi_distance" env:"MAX_POI_DISTANCE" env-default:"200"`
	QueryTimeout   time.Duration `yaml:"query_timeout" env:"PIPELINE_QUERY_TIMEOUT" env-default:"10s"`
	CacheCapacity  int           `yaml:"cache_capacity" env:"CACHE_CAPACITY" env-default:"10000"`
	CacheTTL       time.Duration `yaml:"cache_ttl" env:"CACHE_TTL" env-default:"24h"`
}

func New() (*Config, error) {
	cfg := &Config{}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		// fallback to env vars if file not found
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	} else {
		// Allow env vars to override config file
		cleanenv.ReadEnv(cfg)
	}

	return cfg, nil
}
