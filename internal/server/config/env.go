package config

import (
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/snapster/internal/flagx"
	"github.com/joho/godotenv"
)

// lookupEnv is a seam for tests.
var lookupEnv = os.LookupEnv

// parseEnv overlays values from environment variables. A dotenv file named by
// -env-file is loaded first (and must exist); otherwise ./.env is loaded when
// present. Variables already set in the process environment win over the file.
//
// Recognized variables:
//
//	HTTP_ADDRESS or BACKEND_PORT, DATABASE_URL, JWT_SECRET,
//	ACCESS_TOKEN_TTL, REFRESH_TOKEN_TTL, SALT (bcrypt cost),
//	COOKIE_DOMAIN, COOKIE_SECURE, FRONTEND_URL, LOG_LEVEL,
//	STORAGE_ENDPOINT, STORAGE_PORT, STORAGE_USE_SSL, STORAGE_ACCESS_KEY,
//	STORAGE_SECRET_KEY, STORAGE_DEFAULT_BUCKET, STORAGE_REGION,
//	STORAGE_PUBLIC_URL, STORAGE_URL_EXPIRY, STORAGE_TIMEOUT,
//	UPLOAD_MAX_FILE_SIZE, UPLOAD_MAX_IMAGE_DIMENSION
//
// Malformed numeric, boolean or duration values panic, like a broken JSON
// config does.
func parseEnv(config *Config) {
	if file := flagx.EnvFileFlags(); file != "" {
		if err := godotenv.Load(file); err != nil {
			panic(err)
		}
	} else {
		_ = godotenv.Load()
	}

	if v, ok := lookupEnv("BACKEND_PORT"); ok {
		config.EndpointAddrHTTP = ":" + v
	}
	envString("HTTP_ADDRESS", &config.EndpointAddrHTTP)
	envString("DATABASE_URL", &config.DatabaseDSN)
	envString("JWT_SECRET", &config.SecretKey)
	envDuration("ACCESS_TOKEN_TTL", &config.AccessTokenValidityDuration)
	envDuration("REFRESH_TOKEN_TTL", &config.RefreshTokenValidityDuration)
	envInt("SALT", &config.BcryptCost)
	envString("COOKIE_DOMAIN", &config.CookieDomain)
	envBool("COOKIE_SECURE", &config.CookieSecure)
	envString("FRONTEND_URL", &config.FrontendURL)
	envString("LOG_LEVEL", &config.LogLevel)

	envString("STORAGE_ENDPOINT", &config.S3Endpoint)
	envInt("STORAGE_PORT", &config.S3Port)
	envBool("STORAGE_USE_SSL", &config.S3UseSSL)
	envString("STORAGE_ACCESS_KEY", &config.S3RootUser)
	envString("STORAGE_SECRET_KEY", &config.S3RootPassword)
	envString("STORAGE_DEFAULT_BUCKET", &config.S3Bucket)
	envString("STORAGE_REGION", &config.S3Region)
	envString("STORAGE_PUBLIC_URL", &config.S3PublicURL)
	envDuration("STORAGE_URL_EXPIRY", &config.SignedURLExpiry)
	envDuration("STORAGE_TIMEOUT", &config.StorageTimeout)

	envInt64("UPLOAD_MAX_FILE_SIZE", &config.MaxUploadSize)
	envInt("UPLOAD_MAX_IMAGE_DIMENSION", &config.MaxImageDimension)
	envInt64("UPLOAD_MAX_IMAGE_PIXELS", &config.MaxImagePixels)
}

func envString(key string, dst *string) {
	if v, ok := lookupEnv(key); ok {
		*dst = v
	}
}

func envBool(key string, dst *bool) {
	if v, ok := lookupEnv(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		*dst = b
	}
}

func envInt(key string, dst *int) {
	if v, ok := lookupEnv(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		*dst = n
	}
}

func envInt64(key string, dst *int64) {
	if v, ok := lookupEnv(key); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(err)
		}
		*dst = n
	}
}

// envDuration accepts Go duration strings; a bare integer is read as seconds.
func envDuration(key string, dst *time.Duration) {
	v, ok := lookupEnv(key)
	if !ok {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(n) * time.Second
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}
