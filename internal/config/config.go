// config.go
package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	// Carga el archivo .env (si existe) antes de leer el entorno.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const envPrefix = "CATALOG_"

// Config se arma a partir de variables CATALOG_*, p. ej. CATALOG_MONGO_URI -> mongo_uri.
type Config struct {
	Env               string `koanf:"env" validate:"required"`
	Port              string `koanf:"port" validate:"required,numeric"`
	MongoURI          string `koanf:"mongo_uri" validate:"required"`
	MongoDBName       string `koanf:"mongo_db_name" validate:"required"`
	MongoTransactions bool   `koanf:"mongo_transactions"`
	RabbitURL         string `koanf:"rabbit_url"`
	AuthURL           string `koanf:"auth_url" validate:"required,url"`
	SessionSecret     string `koanf:"session_secret" validate:"required,min=16"`
	ImageBucketURL    string `koanf:"image_bucket_url" validate:"required"`
	ImageMaxSide      int    `koanf:"image_max_side" validate:"gt=0"`
	PageSize          int    `koanf:"page_size" validate:"gt=0,lte=100"`
	LogLevel          string `koanf:"log_level" validate:"oneof=trace debug info warn error"`
	LogPretty         bool   `koanf:"log_pretty"`
}

func defaults() *Config {
	return &Config{
		Env:               "development",
		Port:              "8080",
		MongoURI:          "mongodb://host.docker.internal:27017",
		MongoDBName:       "catalog_db",
		MongoTransactions: true,
		AuthURL:           "http://host.docker.internal:3000",
		ImageBucketURL:    "file:///var/lib/catalog/product_pics?create_dir=true",
		ImageMaxSide:      400,
		PageSize:          20,
		LogLevel:          "info",
	}
}

// Load lee el entorno sobre los valores por defecto y valida el resultado.
func Load() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, "loading env config")
	}

	cfg := defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshalling config")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return cfg, nil
}
