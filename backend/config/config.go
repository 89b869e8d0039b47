package config

import "github.com/spf13/viper"

type Config struct {
	Running struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"running"`
	App struct {
		// Origin is the application's own origin; outbound preview sends
		// target it and inbound acks from any other origin are dropped.
		Origin               string `mapstructure:"origin"`
		AckTimeoutMS         int    `mapstructure:"ackTimeoutMs"`
		DebounceMS           int    `mapstructure:"debounceMs"`
		EnablePerfMonitoring bool   `mapstructure:"enablePerfMonitoring"`
		PresenceTTLSeconds   int    `mapstructure:"presenceTtlSeconds"`
	} `mapstructure:"app"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	Mysql struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"mysql"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		Topic   string   `mapstructure:"topic"`
	} `mapstructure:"kafka"`
}

// Load reads config.yaml from the usual launch directories.
func Load() (*Config, error) {
	cfg := &Config{}
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./backend/config")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
