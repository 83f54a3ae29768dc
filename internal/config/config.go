// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PMacajol/Agro-MAGU/internal/auth"
	"github.com/spf13/viper"
)

// Threshold policies for the alert decision.
const (
	PolicyCore = "core" // N, P, K, pH and temperature critical band only
	PolicyAll  = "all"  // core plus humidity, sunlight and the temperature warning band
)

type Config struct {
	Server struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`
	Monitor        MonitorConfig        `mapstructure:"monitor"`
	Sensor         SensorConfig         `mapstructure:"sensor"`
	Recommendation RecommendationConfig `mapstructure:"recommendation"`
	Notify         NotifyConfig         `mapstructure:"notify"`
	Thresholds     ThresholdSet         `mapstructure:"thresholds"`
	Auth           auth.Config          `mapstructure:"auth"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Influx         InfluxConfig         `mapstructure:"influx"`
	CORS           struct {
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"cors"`
}

type MonitorConfig struct {
	IntervalMinutes int           `mapstructure:"interval_minutes"`
	Autostart       bool          `mapstructure:"autostart"`
	AnnounceStart   bool          `mapstructure:"announce_start"`
	ThresholdPolicy string        `mapstructure:"threshold_policy"`
	HistorySize     int           `mapstructure:"history_size"`
	CycleTimeout    time.Duration `mapstructure:"cycle_timeout"`
}

// Interval converts the configured minutes into a duration.
func (m MonitorConfig) Interval() time.Duration {
	return time.Duration(m.IntervalMinutes) * time.Minute
}

type SensorConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type RecommendationConfig struct {
	Provider        string        `mapstructure:"provider"` // openrouter | gemini | none
	OpenRouterURL   string        `mapstructure:"openrouter_url"`
	OpenRouterKey   string        `mapstructure:"openrouter_api_key"`
	OpenRouterModel string        `mapstructure:"openrouter_model"`
	GeminiKey       string        `mapstructure:"gemini_api_key"`
	GeminiModel     string        `mapstructure:"gemini_model"`
	Referer         string        `mapstructure:"referer"`
	Title           string        `mapstructure:"title"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

type NotifyConfig struct {
	Channel  string        `mapstructure:"channel"` // telegram | email | none
	Timeout  time.Duration `mapstructure:"timeout"`
	Telegram struct {
		APIURL   string `mapstructure:"api_url"`
		BotToken string `mapstructure:"bot_token"`
		ChatID   string `mapstructure:"chat_id"`
	} `mapstructure:"telegram"`
	Email struct {
		Host     string   `mapstructure:"host"`
		Port     int      `mapstructure:"port"`
		Username string   `mapstructure:"username"`
		Password string   `mapstructure:"password"`
		To       []string `mapstructure:"to"`
	} `mapstructure:"email"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	MaxItems int64  `mapstructure:"max_items"`
}

type InfluxConfig struct {
	URL    string `mapstructure:"url"`
	Token  string `mapstructure:"token"`
	Org    string `mapstructure:"org"`
	Bucket string `mapstructure:"bucket"`
}

// Rule is one parameter's band. Min/Max is the warning band; Critical is a
// single floor, CriticalLow/CriticalHigh a critical band. Unset bounds are nil.
type Rule struct {
	Min          float64  `mapstructure:"min" json:"min"`
	Max          float64  `mapstructure:"max" json:"max"`
	Critical     *float64 `mapstructure:"critical" json:"critical,omitempty"`
	CriticalLow  *float64 `mapstructure:"critical_low" json:"critical_low,omitempty"`
	CriticalHigh *float64 `mapstructure:"critical_high" json:"critical_high,omitempty"`
}

type ThresholdSet struct {
	Nitrogen    Rule `mapstructure:"nitrogen" json:"nitrogen"`
	Phosphorus  Rule `mapstructure:"phosphorus" json:"phosphorus"`
	Potassium   Rule `mapstructure:"potassium" json:"potassium"`
	PH          Rule `mapstructure:"ph" json:"ph"`
	Humidity    Rule `mapstructure:"humidity" json:"humidity"`
	Temperature Rule `mapstructure:"temperature" json:"temperature"`
	Sunlight    Rule `mapstructure:"sunlight" json:"sunlight"`
}

func bound(v float64) *float64 { return &v }

// DefaultThresholds is the agronomic table for bean crops in Guatemala.
func DefaultThresholds() ThresholdSet {
	return ThresholdSet{
		Nitrogen:    Rule{Min: 60, Max: 120, Critical: bound(40)},
		Phosphorus:  Rule{Min: 30, Max: 60, Critical: bound(20)},
		Potassium:   Rule{Min: 100, Max: 200, Critical: bound(80)},
		PH:          Rule{Min: 5.5, Max: 7.0, CriticalLow: bound(5.0), CriticalHigh: bound(7.5)},
		Humidity:    Rule{Min: 60, Max: 85, Critical: bound(50)},
		Temperature: Rule{Min: 18, Max: 30, CriticalLow: bound(12), CriticalHigh: bound(35)},
		Sunlight:    Rule{Min: 70, Max: 95, Critical: bound(60)},
	}
}

// Load reads config.yaml from path (if any), the environment and the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		log.Printf("No config file in %q, using defaults and environment", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Monitor.IntervalMinutes <= 0 {
		return fmt.Errorf("monitor.interval_minutes must be positive, got %d", c.Monitor.IntervalMinutes)
	}
	switch c.Monitor.ThresholdPolicy {
	case PolicyCore, PolicyAll:
	default:
		return fmt.Errorf("unknown monitor.threshold_policy %q", c.Monitor.ThresholdPolicy)
	}
	if c.Monitor.HistorySize <= 0 {
		return fmt.Errorf("monitor.history_size must be positive, got %d", c.Monitor.HistorySize)
	}
	switch c.Notify.Channel {
	case "telegram", "email", "none":
	default:
		return fmt.Errorf("unknown notify.channel %q", c.Notify.Channel)
	}
	switch c.Recommendation.Provider {
	case "openrouter", "gemini", "none":
	default:
		return fmt.Errorf("unknown recommendation.provider %q", c.Recommendation.Provider)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)

	v.SetDefault("monitor.interval_minutes", 5)
	v.SetDefault("monitor.autostart", true)
	v.SetDefault("monitor.announce_start", true)
	v.SetDefault("monitor.threshold_policy", PolicyCore)
	v.SetDefault("monitor.history_size", 50)
	v.SetDefault("monitor.cycle_timeout", 2*time.Minute)

	v.SetDefault("sensor.url", "https://agromaguia-e6hratbmg2hraxdq.centralus-01.azurewebsites.net/api/lecturas/promedio-hoy/1")
	v.SetDefault("sensor.timeout", 15*time.Second)

	v.SetDefault("recommendation.provider", "openrouter")
	v.SetDefault("recommendation.openrouter_url", "https://openrouter.ai/api/v1")
	v.SetDefault("recommendation.openrouter_model", "openai/gpt-4.1-mini")
	v.SetDefault("recommendation.gemini_model", "gemini-2.5-flash")
	v.SetDefault("recommendation.referer", "https://pmacajol.github.io/Agro-MAGU")
	v.SetDefault("recommendation.title", "Agro-MAGU")
	v.SetDefault("recommendation.timeout", 60*time.Second)

	v.SetDefault("notify.channel", "telegram")
	v.SetDefault("notify.timeout", 15*time.Second)
	v.SetDefault("notify.telegram.api_url", "https://api.telegram.org")
	v.SetDefault("notify.email.host", "smtp.gmail.com")
	v.SetDefault("notify.email.port", 587)

	v.SetDefault("redis.max_items", 500)
	v.SetDefault("influx.bucket", "frijol")

	v.SetDefault("auth.jwt_expiration", 60)
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})

	t := DefaultThresholds()
	setRuleDefaults(v, "nitrogen", t.Nitrogen)
	setRuleDefaults(v, "phosphorus", t.Phosphorus)
	setRuleDefaults(v, "potassium", t.Potassium)
	setRuleDefaults(v, "ph", t.PH)
	setRuleDefaults(v, "humidity", t.Humidity)
	setRuleDefaults(v, "temperature", t.Temperature)
	setRuleDefaults(v, "sunlight", t.Sunlight)
}

func setRuleDefaults(v *viper.Viper, name string, r Rule) {
	prefix := "thresholds." + name + "."
	v.SetDefault(prefix+"min", r.Min)
	v.SetDefault(prefix+"max", r.Max)
	if r.Critical != nil {
		v.SetDefault(prefix+"critical", *r.Critical)
	}
	if r.CriticalLow != nil {
		v.SetDefault(prefix+"critical_low", *r.CriticalLow)
	}
	if r.CriticalHigh != nil {
		v.SetDefault(prefix+"critical_high", *r.CriticalHigh)
	}
}

// bindEnv maps the deployment's flat variable names onto config keys.
func bindEnv(v *viper.Viper) error {
	bindings := map[string]string{
		"monitor.interval_minutes":          "MONITOR_INTERVAL_MINUTES",
		"sensor.url":                        "SENSOR_URL",
		"recommendation.openrouter_api_key": "OPENROUTER_API_KEY",
		"recommendation.gemini_api_key":     "GEMINI_API_KEY",
		"notify.telegram.bot_token":         "TELEGRAM_BOT_TOKEN",
		"notify.telegram.chat_id":           "TELEGRAM_CHAT_ID",
		"auth.jwt_secret":                   "JWT_SECRET",
		"redis.addr":                        "REDIS_ADDR",
		"influx.url":                        "INFLUXDB_URL",
		"influx.token":                      "INFLUXDB_TOKEN",
		"influx.org":                        "INFLUXDB_ORG",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s: %w", env, err)
		}
	}
	return nil
}
