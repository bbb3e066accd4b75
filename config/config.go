package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileEnvName = "STOREFRONT_CONFIG_FILE"
	envPrefix         = "STOREFRONT"
)

type catalog struct {
	// Source is a file path or an http(s) URL of the product feed.
	Source       string        `mapstructure:"source" validate:"required"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout" validate:"gt=0"`
}

type storage struct {
	Driver string `mapstructure:"driver" validate:"oneof=memory postgres"`
	SQLDB  string `mapstructure:"sql_db" validate:"required_if=Driver postgres"`
}

type topics struct {
	CartEvents string `mapstructure:"cart_events" validate:"required"`
}

// brokerTLS holds file paths. Leaving them empty dials in plain text.
type brokerTLS struct {
	CAFile   string `mapstructure:"ca_file" validate:"required_with=CertFile KeyFile"`
	CertFile string `mapstructure:"cert_file" validate:"required_with=KeyFile"`
	KeyFile  string `mapstructure:"key_file" validate:"required_with=CertFile"`
}

func (t brokerTLS) Enabled() bool {
	return t.CAFile != ""
}

type broker struct {
	SeedBrokers        []string      `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string      `mapstructure:"schema_registry_urls"`
	Topics             topics        `mapstructure:"topics"`
	TLS                brokerTLS     `mapstructure:"tls"`
	PublishTimeout     time.Duration `mapstructure:"publish_timeout" validate:"gt=0"`
	Partitions         int32         `mapstructure:"partitions" validate:"gt=0"`
	ReplicationFactor  int16         `mapstructure:"replication_factor" validate:"gt=0"`
}

// Enabled reports whether cart events are published.
func (b broker) Enabled() bool {
	return len(b.SeedBrokers) != 0
}

type storefront struct {
	ItemsPerPage    int           `mapstructure:"items_per_page" validate:"gt=0"`
	FeaturedCount   int           `mapstructure:"featured_count" validate:"gt=0"`
	RelatedCount    int           `mapstructure:"related_count" validate:"gt=0"`
	DefaultCurrency string        `mapstructure:"default_currency" validate:"oneof=USD EUR GBP JPY CNY"`
	DefaultLanguage string        `mapstructure:"default_language" validate:"oneof=en es fr de zh"`
	ChatReplyDelay  time.Duration `mapstructure:"chat_reply_delay" validate:"gt=0"`
	SearchDebounce  time.Duration `mapstructure:"search_debounce" validate:"gt=0"`
	PriceDebounce   time.Duration `mapstructure:"price_debounce" validate:"gt=0"`
	NotifyDismiss   time.Duration `mapstructure:"notify_dismiss" validate:"gt=0"`
	ChatRateLimit   float64       `mapstructure:"chat_rate_limit" validate:"gt=0"`
	ChatBurst       int           `mapstructure:"chat_burst" validate:"gt=0"`
}

type Config struct {
	LogLevel       slog.Level `mapstructure:"log_level"`
	LogFile        string     `mapstructure:"log_file"`
	HTTPServerAddr string     `mapstructure:"http_server_addr" validate:"required"`
	Catalog        catalog    `mapstructure:"catalog"`
	Storage        storage    `mapstructure:"storage"`
	Broker         broker     `mapstructure:"broker"`
	Storefront     storefront `mapstructure:"storefront"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("http_server_addr", ":8080")
	v.SetDefault("catalog.source", "products.json")
	v.SetDefault("catalog.fetch_timeout", "5s")
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.sql_db", "")
	v.SetDefault("broker.seed_brokers", []string{})
	v.SetDefault("broker.schema_registry_urls", []string{})
	v.SetDefault("broker.topics.cart_events", "storefront-cart-events")
	v.SetDefault("broker.tls.ca_file", "")
	v.SetDefault("broker.tls.cert_file", "")
	v.SetDefault("broker.tls.key_file", "")
	v.SetDefault("broker.publish_timeout", "1s")
	v.SetDefault("broker.partitions", 3)
	v.SetDefault("broker.replication_factor", 3)
	v.SetDefault("storefront.items_per_page", 12)
	v.SetDefault("storefront.featured_count", 6)
	v.SetDefault("storefront.related_count", 4)
	v.SetDefault("storefront.default_currency", "USD")
	v.SetDefault("storefront.default_language", "en")
	v.SetDefault("storefront.chat_reply_delay", "800ms")
	v.SetDefault("storefront.search_debounce", "300ms")
	v.SetDefault("storefront.price_debounce", "500ms")
	v.SetDefault("storefront.notify_dismiss", "3s")
	v.SetDefault("storefront.chat_rate_limit", 1.0)
	v.SetDefault("storefront.chat_burst", 5)
}

// Load reads the config file named by --config or STOREFRONT_CONFIG_FILE
// and exits the process when it is unusable.
func Load() Config {
	cfg, err := LoadFile(getConfigFilepath())
	if err != nil {
		die(err)
	}
	return cfg
}

// LoadFile reads path, applies defaults and STOREFRONT_* environment
// overrides, and validates the result. An empty path uses defaults only.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	err := v.UnmarshalExact(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return Config{}, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, err
	}
	if cfg.Broker.Enabled() && len(cfg.Broker.SchemaRegistryURLs) == 0 {
		return Config{}, errors.New(
			"broker.schema_registry_urls: required with broker.seed_brokers",
		)
	}
	return cfg, nil
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", "", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	template := `
	General:
	LogLevel=%q
	LogFile=%q
	HTTPServerAddr=%q

	Catalog:
	Source=%q
	FetchTimeout=%s

	Storage:
	Driver=%q
	SQLDB=%q

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	Topics:
		CartEvents=%q
	TLS=%t
	PublishTimeout=%s

	Storefront:
	ItemsPerPage=%d
	DefaultCurrency=%q
	DefaultLanguage=%q
	ChatReplyDelay=%s

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(template, "\n"),
		c.LogLevel,
		c.LogFile,
		c.HTTPServerAddr,
		c.Catalog.Source,
		c.Catalog.FetchTimeout,
		c.Storage.Driver,
		redact(c.Storage.SQLDB),
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.Topics.CartEvents,
		c.Broker.TLS.Enabled(),
		c.Broker.PublishTimeout,
		c.Storefront.ItemsPerPage,
		c.Storefront.DefaultCurrency,
		c.Storefront.DefaultLanguage,
		c.Storefront.ChatReplyDelay,
	)
}

// redact hides the password of a postgres URL.
func redact(dsn string) string {
	at := strings.LastIndexByte(dsn, '@')
	scheme := strings.Index(dsn, "://")
	if at == -1 || scheme == -1 || scheme+3 > at {
		return dsn
	}
	userinfo := dsn[scheme+3 : at]
	if colon := strings.IndexByte(userinfo, ':'); colon != -1 {
		userinfo = userinfo[:colon] + ":xxxxx"
	}
	return dsn[:scheme+3] + userinfo + dsn[at:]
}
