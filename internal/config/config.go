package config

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/Alturino/spices/internal/constants"
)

type Application struct {
	Env  string `mapstructure:"env"  json:"env"`
	Host string `mapstructure:"host" json:"host"`
	Port int    `mapstructure:"port" json:"port"`
}

type Database struct {
	Name           string `mapstructure:"name"            json:"name"`
	Host           string `mapstructure:"host"            json:"host"`
	MigrationPath  string `mapstructure:"migration_path"  json:"migration_path"`
	Password       string `mapstructure:"password"        json:"-"`
	TimeZone       string `mapstructure:"timezone"        json:"timezone"`
	Username       string `mapstructure:"username"        json:"username"`
	MaxConnections int32  `mapstructure:"max_connections" json:"max_connections"`
	MinConnections int32  `mapstructure:"min_connections" json:"min_connections"`
	Port           uint16 `mapstructure:"port"            json:"port"`
}

type Cache struct {
	Host     string `mapstructure:"host"     json:"host"`
	Password string `mapstructure:"password" json:"-"`
	Database int    `mapstructure:"database" json:"database"`
	Port     uint16 `mapstructure:"port"     json:"port"`
}

type Otel struct {
	Host string `mapstructure:"host" json:"host"`
	Port int    `mapstructure:"port" json:"port"`
}

// Identity describes the external identity provider whose bearer tokens are accepted.
type Identity struct {
	SecretKey string `mapstructure:"secret_key" json:"-"`
	Issuer    string `mapstructure:"issuer"     json:"issuer"`
	Audience  string `mapstructure:"audience"   json:"audience"`
}

type Cart struct {
	TaxRate           string        `mapstructure:"tax_rate"            json:"tax_rate"`
	ShippingFee       string        `mapstructure:"shipping_fee"        json:"shipping_fee"`
	AnonymousTokenTTL time.Duration `mapstructure:"anonymous_token_ttl" json:"anonymous_token_ttl"`
	CatalogCacheTTL   time.Duration `mapstructure:"catalog_cache_ttl"   json:"catalog_cache_ttl"`
	CookieSecure      bool          `mapstructure:"cookie_secure"       json:"cookie_secure"`
}

// Order is the external order-creation endpoint receiving checkout handoffs.
type Order struct {
	URL     string        `mapstructure:"url"     json:"url"`
	Timeout time.Duration `mapstructure:"timeout" json:"timeout"`
}

type Config struct {
	Application Application `mapstructure:"application" json:"application"`
	Database    Database    `mapstructure:"db"          json:"db"`
	CatalogDB   Database    `mapstructure:"catalog_db"  json:"catalog_db"`
	Cache       Cache       `mapstructure:"cache"       json:"cache"`
	Otel        Otel        `mapstructure:"otel"        json:"otel"`
	Identity    Identity    `mapstructure:"identity"    json:"identity"`
	Cart        Cart        `mapstructure:"cart"        json:"cart"`
	Order       Order       `mapstructure:"order"       json:"order"`
}

var (
	once   sync.Once
	config *Config
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("application.env", "production")
	v.SetDefault("application.host", "0.0.0.0")
	v.SetDefault("application.port", 8080)
	v.SetDefault("cart.tax_rate", "0.14")
	v.SetDefault("cart.shipping_fee", "50")
	v.SetDefault("cart.anonymous_token_ttl", 30*24*time.Hour)
	v.SetDefault("cart.catalog_cache_ttl", 30*time.Second)
	v.SetDefault("cart.cookie_secure", true)
	v.SetDefault("order.timeout", 10*time.Second)
}

func Get(c context.Context, filename string) *Config {
	once.Do(func() {
		logger := zerolog.Ctx(c).
			With().
			Str(constants.KEY_TAG, "config Get").
			Str(constants.KEY_PROCESS, "init config").
			Str("filename", filename).
			Logger()

		v := viper.New()
		v.SetConfigName(filename)
		v.AddConfigPath("./env")
		v.SetConfigType("yaml")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
		setDefaults(v)

		logger = logger.With().Str(constants.KEY_PROCESS, "reading config").Logger()
		logger.Info().Msg("reading config")
		err := v.ReadInConfig()
		if err != nil {
			err = fmt.Errorf("error when reading config with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		logger.Info().Msg("read config")

		logger = logger.With().Str(constants.KEY_PROCESS, "unmarshaling config").Logger()
		logger.Info().Msg("unmarshaling config")
		cfg := Config{}
		err = v.Unmarshal(&cfg)
		if err != nil {
			err = fmt.Errorf("error unmarshaling config with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		config = &cfg
		logger = logger.With().Any(constants.KEY_CONFIG, cfg).Logger()
		logger.Info().Msg("unmarshaled config")
	})
	return config
}
