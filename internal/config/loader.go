package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultBufferSize   = 4096
	maxBufferSize       = 1048576
	defaultMaxBodyBytes = 16 * 1024 * 1024
)

type config struct {
	httpPort string

	baseURI    string
	pathPrefix string
	strict     bool

	bufferSize   int
	maxBodyBytes int64

	noColor bool
}

func parse() (*config, error) {
	httpPort := getenv("HTTP_PORT", "8080")

	baseURI, err := parseBaseURI()
	if err != nil {
		return nil, err
	}
	pathPrefix := strings.Trim(getenv("BATCH_PATH_PREFIX", ""), "/")
	strict := getenvBool("BATCH_STRICT", true)

	bufferSize := parseBufferSize()

	maxBodyBytes, err := parseMaxBodyBytes()
	if err != nil {
		return nil, err
	}

	noColor := os.Getenv("NO_COLOR") != ""

	return &config{
		httpPort:     httpPort,
		baseURI:      baseURI,
		pathPrefix:   pathPrefix,
		strict:       strict,
		bufferSize:   bufferSize,
		maxBodyBytes: maxBodyBytes,
		noColor:      noColor,
	}, nil
}

func loadEnvFile() error {
	if _, err := os.Stat(".env"); err == nil {
		return godotenv.Load(".env")
	}
	return nil
}

func parseBaseURI() (string, error) {
	raw := getenv("BATCH_BASE_URI", "http://localhost:8080/odata")
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid BATCH_BASE_URI: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("BATCH_BASE_URI must be an absolute http(s) uri")
	}
	if u.Host == "" {
		return "", fmt.Errorf("BATCH_BASE_URI must include a host")
	}
	return strings.TrimRight(raw, "/"), nil
}

func parseBufferSize() int {
	raw := getenv("BUFFER_SIZE", strconv.Itoa(defaultBufferSize))
	size, err := strconv.Atoi(raw)
	if err != nil || size < 1 || size > maxBufferSize {
		log.Printf("Invalid BUFFER_SIZE, falling back to %d", defaultBufferSize)
		return defaultBufferSize
	}
	return size
}

func parseMaxBodyBytes() (int64, error) {
	raw := getenv("MAX_BODY_BYTES", strconv.Itoa(defaultMaxBodyBytes))
	size, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid MAX_BODY_BYTES: %w", err)
	}
	if size <= 0 {
		return 0, fmt.Errorf("MAX_BODY_BYTES must be positive")
	}
	return size, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val == "true"
}
