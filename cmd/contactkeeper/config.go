package main

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/avelichko/contactkeeper/internal/logger"
)

const (
	defaultListenAddr   = "localhost:8000"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = logger.EnvProduction
	defaultSMTPPort     = 587
	defaultS3Region     = "us-east-1"
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the contactkeeper service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Secret key
	// Some internal parts (like signing JWT tokens) uses symmetric encryption, so this key is used for that purpose
	SecretKey string

	// Environment
	Environment string

	// Public base URL of the service, used to build links in outgoing mail
	PublicBaseURL string

	// Redis, used for the user cache and rate limiting
	RedisAddr     string
	RedisPassword string

	// Outgoing mail; confirmation mails are only logged when Host is empty
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// S3-compatible avatar storage
	S3Endpoint        string
	S3Region          string
	S3Bucket          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3PublicBaseURL   string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:    defaultLoggingLevel,
		ListenAddr:  defaultListenAddr,
		Environment: defaultEnvironment,
		SMTPPort:    defaultSMTPPort,
		S3Region:    defaultS3Region,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}
	setInt := func(o *int) func(value string) {
		return func(value string) {
			if parsed, err := strconv.Atoi(value); err == nil {
				*o = parsed
			}
		}
	}

	envMap := map[string]func(string){
		"RUN_ADDRESS":          setString(&c.ListenAddr),
		"DATABASE_URI":         setString(&c.DatabaseDSN),
		"SECRET_KEY":           setString(&c.SecretKey),
		"LOG_LEVEL":            setString(&c.LogLevel),
		"ENVIRONMENT":          setString(&c.Environment),
		"PUBLIC_BASE_URL":      setString(&c.PublicBaseURL),
		"REDIS_ADDR":           setString(&c.RedisAddr),
		"REDIS_PASSWORD":       setString(&c.RedisPassword),
		"SMTP_HOST":            setString(&c.SMTPHost),
		"SMTP_PORT":            setInt(&c.SMTPPort),
		"SMTP_USERNAME":        setString(&c.SMTPUsername),
		"SMTP_PASSWORD":        setString(&c.SMTPPassword),
		"SMTP_FROM":            setString(&c.SMTPFrom),
		"S3_ENDPOINT":          setString(&c.S3Endpoint),
		"S3_REGION":            setString(&c.S3Region),
		"S3_BUCKET":            setString(&c.S3Bucket),
		"S3_ACCESS_KEY_ID":     setString(&c.S3AccessKeyID),
		"S3_SECRET_ACCESS_KEY": setString(&c.S3SecretAccessKey),
		"S3_PUBLIC_BASE_URL":   setString(&c.S3PublicBaseURL),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("contactkeeper", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.StringVarP(&c.RedisAddr, "redis", "r", c.RedisAddr, "Redis address")
	fs.StringVarP(&c.PublicBaseURL, "base-url", "b", c.PublicBaseURL, "Public base URL for links in mail")

	return fs.Parse(args)
}
