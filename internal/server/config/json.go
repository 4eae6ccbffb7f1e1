package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/snapster/internal/flagx"
	"github.com/dmitrijs2005/snapster/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Durations accept
// both "1h" style strings and integer nanoseconds. Pointer fields distinguish
// "absent" from an explicit zero/false.
type JsonConfig struct {
	EndpointAddrHTTP             string          `json:"endpoint_addr_http"`
	DatabaseDSN                  string          `json:"database_dsn"`
	SecretKey                    string          `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	BcryptCost                   int             `json:"bcrypt_cost"`
	CookieDomain                 string          `json:"cookie_domain"`
	CookieSecure                 *bool           `json:"cookie_secure"`
	FrontendURL                  string          `json:"frontend_url"`
	LogLevel                     string          `json:"log_level"`

	S3Endpoint     string `json:"s3_endpoint"`
	S3Port         int    `json:"s3_port"`
	S3UseSSL       *bool  `json:"s3_use_ssl"`
	S3RootUser     string `json:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3PublicURL    string `json:"s3_public_url"`

	MaxUploadSize     int64           `json:"max_upload_size"`
	MaxImageDimension int             `json:"max_image_dimension"`
	MaxImagePixels    int64           `json:"max_image_pixels"`
	SignedURLExpiry   *timex.Duration `json:"signed_url_expiry"`
	StorageTimeout    *timex.Duration `json:"storage_timeout"`
}

// parseJson loads configuration values from the JSON file named by the -c or
// -config flag. Without the flag nothing is loaded. Only keys present in the
// file override the current values. An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	setString(&config.CookieDomain, c.CookieDomain)
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	setString(&config.FrontendURL, c.FrontendURL)
	setString(&config.LogLevel, c.LogLevel)

	setString(&config.S3Endpoint, c.S3Endpoint)
	if c.S3Port != 0 {
		config.S3Port = c.S3Port
	}
	if c.S3UseSSL != nil {
		config.S3UseSSL = *c.S3UseSSL
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3PublicURL, c.S3PublicURL)

	if c.MaxUploadSize != 0 {
		config.MaxUploadSize = c.MaxUploadSize
	}
	if c.MaxImageDimension != 0 {
		config.MaxImageDimension = c.MaxImageDimension
	}
	if c.MaxImagePixels != 0 {
		config.MaxImagePixels = c.MaxImagePixels
	}
	if c.SignedURLExpiry != nil {
		config.SignedURLExpiry = c.SignedURLExpiry.Duration
	}
	if c.StorageTimeout != nil {
		config.StorageTimeout = c.StorageTimeout.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
