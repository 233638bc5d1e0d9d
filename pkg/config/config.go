package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración del puente POS API (Viper desde env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	DB        DBConfig
	HTTP      HTTPConfig
	CORS      CORSConfig
	PosAPI    PosAPIConfig
	Ebarimt   EbarimtInfoConfig
	Redis     RedisConfig
	Defaults  DefaultsConfig
	Scheduler SchedulerConfig
	Metrics   MetricsConfig
	Docs      DocsConfig
	Lock      LockConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
	Store    string // postgres | memory
}

// UseMemoryStore indica si los registros se guardan en memoria (sin PostgreSQL).
func (c AppConfig) UseMemoryStore() bool {
	return strings.EqualFold(c.Store, "memory")
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString devuelve DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN connection string con URL encoding para caracteres especiales en la contraseña.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// MigrateURL connection string con el esquema pgx5:// que espera golang-migrate.
func (c DBConfig) MigrateURL() string {
	dsn := c.ConnectionString()
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix)
		}
	}
	return dsn
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CORSConfig orígenes permitidos (lista separada por comas).
type CORSConfig struct {
	AllowOrigins string
}

// PosAPIConfig POS API local que firma y emite los recibos.
type PosAPIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// EbarimtInfoConfig API pública de consultas de ebarimt.
type EbarimtInfoConfig struct {
	BaseURL  string
	RPS      int
	CacheTTL time.Duration
}

// RedisConfig Redis opcional: lock por pedido, caché de consultas y cola del worker.
// Addr vacío desactiva Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled indica si hay Redis configurado.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// DefaultsConfig cabecera POS y valores de ítem usados cuando ni la petición ni la configuración guardada los traen.
type DefaultsConfig struct {
	MerchantTin        string
	PosNo              string
	DistrictCode       string
	BranchNo           string
	BillIDSuffix       string
	MeasureUnit        string
	ClassificationCode string
	TaxProductCode     string
}

// SchedulerConfig tarea periódica de envío de pendientes (formato cron o @every).
type SchedulerConfig struct {
	SendDataSpec string
}

// MetricsConfig métricas Prometheus.
type MetricsConfig struct {
	Namespace string
}

// DocsConfig documentación OpenAPI servida en /docs.
type DocsConfig struct {
	SwaggerFile string
}

// LockMargin holgura mínima del lock por pedido sobre el timeout del POS API.
const LockMargin = 15 * time.Second

// LockConfig duración del lock por pedido. Por defecto POS_API_TIMEOUT_SECONDS + 2*LockMargin.
type LockConfig struct {
	TTL time.Duration
}

// Load lee la configuración desde variables de entorno (y opcionalmente .env / config.env).
// Las env vars tienen prioridad.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "posapi-bridge"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
			Store:    getString(v, "APP_STORE", "postgres"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "posapi"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 4001),
		},
		CORS: CORSConfig{
			AllowOrigins: getString(v, "CORS_ALLOW_ORIGINS",
				"http://localhost:3000,http://127.0.0.1:3000,https://pos.itsystem.mn"),
		},
		PosAPI: PosAPIConfig{
			BaseURL: strings.TrimRight(getString(v, "POS_API_BASE_URL", "http://127.0.0.1:7080"), "/"),
			Timeout: time.Duration(getInt(v, "POS_API_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Ebarimt: EbarimtInfoConfig{
			BaseURL:  strings.TrimRight(getString(v, "EBARIMT_API_BASE_URL", "https://api.ebarimt.mn/api"), "/"),
			RPS:      getInt(v, "EBARIMT_API_RPS", 5),
			CacheTTL: time.Duration(getInt(v, "EBARIMT_INFO_CACHE_MINUTES", 60)) * time.Minute,
		},
		Redis: RedisConfig{
			Addr:     getString(v, "REDIS_ADDR", ""),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
		},
		Defaults: DefaultsConfig{
			MerchantTin:        getString(v, "MERCHANT_TIN", ""),
			PosNo:              getString(v, "POS_NO", ""),
			DistrictCode:       getString(v, "DISTRICT_CODE", ""),
			BranchNo:           getString(v, "BRANCH_NO", ""),
			BillIDSuffix:       getString(v, "BILL_ID_SUFFIX", "01"),
			MeasureUnit:        getString(v, "DEFAULT_MEASURE_UNIT", "ш"),
			ClassificationCode: getString(v, "DEFAULT_CLASSIFICATION_CODE", ""),
			TaxProductCode:     getString(v, "DEFAULT_TAX_PRODUCT_CODE", ""),
		},
		Scheduler: SchedulerConfig{
			SendDataSpec: getString(v, "SEND_DATA_SCHEDULE", "@every 10m"),
		},
		Metrics: MetricsConfig{
			Namespace: getString(v, "METRICS_NAMESPACE", "posapi"),
		},
		Docs: DocsConfig{
			SwaggerFile: getString(v, "SWAGGER_FILE", "./docs/swagger.json"),
		},
	}
	posTimeout := int(cfg.PosAPI.Timeout / time.Second)
	cfg.Lock = LockConfig{
		TTL: time.Duration(getInt(v, "ORDER_LOCK_SECONDS", posTimeout+int(2*LockMargin/time.Second))) * time.Second,
	}

	if cfg.HTTP.Port <= 0 {
		return nil, fmt.Errorf("config: HTTP_PORT inválido")
	}
	if cfg.PosAPI.Timeout <= 0 {
		return nil, fmt.Errorf("config: POS_API_TIMEOUT_SECONDS debe ser mayor que 0")
	}
	if cfg.Lock.TTL < cfg.PosAPI.Timeout+LockMargin {
		return nil, fmt.Errorf("config: ORDER_LOCK_SECONDS (%s) debe superar POS_API_TIMEOUT_SECONDS (%s) en al menos %s",
			cfg.Lock.TTL, cfg.PosAPI.Timeout, LockMargin)
	}
	switch strings.ToLower(cfg.App.Store) {
	case "postgres", "memory":
	default:
		return nil, fmt.Errorf("config: APP_STORE %q no soportado (postgres | memory)", cfg.App.Store)
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
