package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Order    OrderConfig
	Checkout CheckoutConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	// 連接池大小：開賣尖峰靠 MaxConns 撐住，平常靠 MinConns 省資源
	MaxConns int32
	MinConns int32
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type OrderConfig struct {
	// PaymentGrace 建單後的付款寬限期，逾期由 sweep 轉 expired
	PaymentGrace  time.Duration
	SweepInterval time.Duration
}

type CheckoutConfig struct {
	GatewayURL string
	Currency   string
}

var AppConfig *Config

func LoadConfig() *Config {
	// .env 不存在時安靜跳過，環境變數優先
	_ = godotenv.Load()

	AppConfig = &Config{
		Server:   GetServerConfig(),
		Database: GetDatabaseConfig(),
		Redis:    GetRedisConfig(),
		Order:    GetOrderConfig(),
		Checkout: GetCheckoutConfig(),
	}

	return AppConfig
}

func LoadTestConfig() *Config {
	testConfig := &DatabaseConfig{
		Host:     "localhost",
		Port:     "5433", // 測試 DB 用 5433 port
		User:     "postgres",
		Password: "postgres",
		DBName:   "test_db",
		SSLMode:  "disable",
		MaxConns: 20, // 併發測試會同時開很多交易
		MinConns: 2,
	}

	testRedisConfig := RedisConfig{
		Host:     "localhost",
		Port:     "6380", // 測試 Redis 用 6380 port
		Password: "",
		DB:       1,
	}

	return &Config{
		Server:   ServerConfig{Port: "8081"},
		Database: *testConfig,
		Redis:    testRedisConfig,
		Order: OrderConfig{
			PaymentGrace:  10 * time.Minute,
			SweepInterval: time.Second,
		},
		Checkout: CheckoutConfig{
			GatewayURL: "http://localhost:9090/pay",
			Currency:   "TWD",
		},
	}
}

func GetServerConfig() ServerConfig {
	return ServerConfig{
		Port: getEnv("SERVER_PORT", "8080"),
	}
}

func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "postgres"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: getInt32Env("DB_MAX_CONNS", 50),
		MinConns: getInt32Env("DB_MIN_CONNS", 10),
	}
}

func GetRedisConfig() RedisConfig {
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		panic(err)
	}

	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

func GetOrderConfig() OrderConfig {
	return OrderConfig{
		PaymentGrace:  getDurationEnv("ORDER_PAYMENT_GRACE", 10*time.Minute),
		SweepInterval: getDurationEnv("ORDER_SWEEP_INTERVAL", 30*time.Second),
	}
}

func GetCheckoutConfig() CheckoutConfig {
	return CheckoutConfig{
		GatewayURL: getEnv("CHECKOUT_GATEWAY_URL", "http://localhost:9090/pay"),
		Currency:   getEnv("CHECKOUT_CURRENCY", "TWD"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt32Env(key string, fallback int32) int32 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		panic(err)
	}
	return int32(v)
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		panic(err)
	}
	return d
}
