package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// DB holds relational store connection parameters.
type DB struct {
	Host     string
	Port     int
	Name     string
	User     string
	Password string
}

// DSN builds a Postgres connection string.
func (d DB) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

// Config is the per-service environment configuration. Every service
// loads the full set; unused fields keep their defaults.
type Config struct {
	Port string

	DB DB

	JWTSecret    string
	JWTExpiresIn time.Duration

	AuthServiceURL  string
	UserServiceURL  string
	OrderServiceURL string

	// RabbitMQURL is optional; when empty the order service skips
	// event publishing entirely.
	RabbitMQURL string
}

// Load reads configuration from the environment via viper. Each
// service passes its own port and database name defaults; the rest of
// the defaults are shared across the deployment.
func Load(defaultPort, defaultDBName string) *Config {
	v := viper.New()

	v.SetDefault("PORT", defaultPort)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_NAME", defaultDBName)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("JWT_SECRET", "secret")
	v.SetDefault("JWT_EXPIRES_IN", "24h")
	v.SetDefault("AUTH_SERVICE_URL", "http://localhost:3001")
	v.SetDefault("USER_SERVICE_URL", "http://localhost:3002")
	v.SetDefault("ORDER_SERVICE_URL", "http://localhost:3003")
	v.SetDefault("RABBITMQ_URL", "")
	v.AutomaticEnv()

	return &Config{
		Port: v.GetString("PORT"),
		DB: DB{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
		},
		JWTSecret:       v.GetString("JWT_SECRET"),
		JWTExpiresIn:    v.GetDuration("JWT_EXPIRES_IN"),
		AuthServiceURL:  v.GetString("AUTH_SERVICE_URL"),
		UserServiceURL:  v.GetString("USER_SERVICE_URL"),
		OrderServiceURL: v.GetString("ORDER_SERVICE_URL"),
		RabbitMQURL:     v.GetString("RABBITMQ_URL"),
	}
}
