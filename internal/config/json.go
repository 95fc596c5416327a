package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	Auth struct {
		TokenSignKey    string   `json:"token_sign_key"`
		TokenIssuer     string   `json:"token_issuer"`
		TokenDuration   Duration `json:"token_duration"`
		BcryptCost      int      `json:"bcrypt_cost"`
		ResetDailyLimit int      `json:"reset_daily_limit"`
	} `json:"auth,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	Notifier struct {
		BaseURL   string   `json:"base_url"`
		Timeout   Duration `json:"timeout"`
		QueueSize int      `json:"queue_size"`
	} `json:"notifier,omitempty"`

	Limiter struct {
		RedisAddress     string   `json:"redis_address"`
		MaxLoginAttempts int      `json:"max_login_attempts"`
		LoginCooldown    Duration `json:"login_cooldown"`
	} `json:"limiter,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		Auth: Auth{
			TokenSignKey:    jsonCfg.Auth.TokenSignKey,
			TokenIssuer:     jsonCfg.Auth.TokenIssuer,
			TokenDuration:   time.Duration(jsonCfg.Auth.TokenDuration),
			BcryptCost:      jsonCfg.Auth.BcryptCost,
			ResetDailyLimit: jsonCfg.Auth.ResetDailyLimit,
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		Notifier: Notifier{
			BaseURL:   jsonCfg.Notifier.BaseURL,
			Timeout:   time.Duration(jsonCfg.Notifier.Timeout),
			QueueSize: jsonCfg.Notifier.QueueSize,
		},
		Limiter: Limiter{
			RedisAddress:     jsonCfg.Limiter.RedisAddress,
			MaxLoginAttempts: jsonCfg.Limiter.MaxLoginAttempts,
			LoginCooldown:    time.Duration(jsonCfg.Limiter.LoginCooldown),
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
