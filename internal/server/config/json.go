package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig mirrors Config for JSON decoding. Durations accept "24h"-style
// strings or integer nanoseconds. Only keys present in the file override the
// current values.
type JsonConfig struct {
	EndpointAddrHTTP              *string         `json:"endpoint_addr_http"`
	StoreBackend                  *string         `json:"store_backend"`
	DatabaseDSN                   *string         `json:"database_dsn"`
	SecretKey                     *string         `json:"secret_key"`
	AccessTokenValidityDuration   *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration  *timex.Duration `json:"refresh_token_validity_duration"`
	EmailTokenValidityDuration    *timex.Duration `json:"email_token_validity_duration"`
	PasswordTokenValidityDuration *timex.Duration `json:"password_token_validity_duration"`
	APIURL                        *string         `json:"api_url"`
	FrontendURL                   *string         `json:"frontend_url"`
	RedisAddr                     *string         `json:"redis_addr"`
	NotificationQueue             *string         `json:"notification_queue"`
	NotificationMaxAttempts       *int            `json:"notification_max_attempts"`
	SMTPHost                      *string         `json:"smtp_host"`
	SMTPPort                      *int            `json:"smtp_port"`
	SMTPUsername                  *string         `json:"smtp_username"`
	SMTPPassword                  *string         `json:"smtp_password"`
	SMTPFrom                      *string         `json:"smtp_from"`
	BcryptCost                    *int            `json:"bcrypt_cost"`
	HashWorkers                   *int            `json:"hash_workers"`
	MinPasswordEntropy            *float64        `json:"min_password_entropy"`
}

// parseJson overlays values from the file named by -c/-config. No flag means
// nothing to load.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	c.apply(config)
	return nil
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.StoreBackend, c.StoreBackend)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setDuration(&config.EmailTokenValidityDuration, c.EmailTokenValidityDuration)
	setDuration(&config.PasswordTokenValidityDuration, c.PasswordTokenValidityDuration)
	setString(&config.APIURL, c.APIURL)
	setString(&config.FrontendURL, c.FrontendURL)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.NotificationQueue, c.NotificationQueue)
	setInt(&config.NotificationMaxAttempts, c.NotificationMaxAttempts)
	setString(&config.SMTPHost, c.SMTPHost)
	setInt(&config.SMTPPort, c.SMTPPort)
	setString(&config.SMTPUsername, c.SMTPUsername)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.SMTPFrom, c.SMTPFrom)
	setInt(&config.BcryptCost, c.BcryptCost)
	setInt(&config.HashWorkers, c.HashWorkers)
	if c.MinPasswordEntropy != nil {
		config.MinPasswordEntropy = *c.MinPasswordEntropy
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
