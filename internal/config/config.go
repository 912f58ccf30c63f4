package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Sink selection values for SINK.
const (
	SinkRespond  = "respond"
	SinkAirtable = "airtable"
	SinkXLSX     = "xlsx"
)

// Missing-test policy values for MISSING_TEST_POLICY. "fail" aborts the
// invocation when a catalog test is absent from the document; "skip" omits
// the test from the result.
const (
	PolicyFail = "fail"
	PolicySkip = "skip"
)

type Config struct {
	// Extraction
	CatalogPath       string
	MissingTestPolicy string

	// Sink
	Sink           string
	AirtableAPIURL string
	AirtableToken  string
	AirtableBase   string
	AirtableTable  string
	SubmitTimeout  time.Duration
	XLSXPath       string
	XLSXSheet      string

	// Server
	Port                 string
	InternalSharedSecret string

	// Limits
	MaxJSONBodyBytes int64
	MaxUploadBytes   int64

	// Concurrency
	MaxConcurrentRequests int64

	// Server timeouts
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration

	// Request timeouts
	InvokeTimeout time.Duration

	// rate limiting (per IP)
	RateLimitEvery time.Duration
	RateLimitBurst int

	// housekeeping
	CleanupInterval time.Duration

	// health
	HealthDegradeRatio float64

	// http
	MaxHeaderBytes int
}

func Load() Config {
	return Config{
		CatalogPath:       envStr("CATALOG_PATH", ""),
		MissingTestPolicy: envStr("MISSING_TEST_POLICY", PolicyFail),

		Sink:           envStr("SINK", SinkRespond),
		AirtableAPIURL: envStr("AIRTABLE_API_URL", "https://api.airtable.com/v0"),
		AirtableToken:  envStr("AIRTABLE_ACCESS_TOKEN", ""),
		AirtableBase:   envStr("AIRTABLE_BASE_ID", ""),
		AirtableTable:  envStr("AIRTABLE_TABLE_ID", ""),
		SubmitTimeout:  envDur("SUBMIT_TIMEOUT", 15*time.Second),
		XLSXPath:       envStr("XLSX_PATH", "blood-results.xlsx"),
		XLSXSheet:      envStr("XLSX_SHEET", "Results"),

		Port:                 envStr("PORT", "8080"),
		InternalSharedSecret: envStr("INTERNAL_SHARED_SECRET", ""),

		MaxJSONBodyBytes: int64(envInt("MAX_JSON_BODY_BYTES", 2<<20)),
		MaxUploadBytes:   int64(envInt("MAX_UPLOAD_BYTES", int(10<<20))),

		MaxConcurrentRequests: int64(envInt("MAX_CONCURRENT_REQUESTS", 10)),

		ReadHeaderTimeout: envDur("READ_HEADER_TIMEOUT", 10*time.Second),
		ReadTimeout:       envDur("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:      envDur("WRITE_TIMEOUT", 120*time.Second),
		IdleTimeout:       envDur("IDLE_TIMEOUT", 60*time.Second),

		InvokeTimeout: envDur("INVOKE_TIMEOUT", 120*time.Second),

		RateLimitEvery: envDur("RATE_LIMIT_EVERY", 600*time.Millisecond),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 20),

		CleanupInterval: envDur("CLEANUP_INTERVAL", 5*time.Minute),

		HealthDegradeRatio: envFloat("HEALTH_DEGRADE_RATIO", 0.9),

		MaxHeaderBytes: envInt("MAX_HEADER_BYTES", 1<<20),
	}
}

func (c Config) Validate() error {
	switch c.Sink {
	case SinkRespond, SinkXLSX:
	case SinkAirtable:
		if c.AirtableToken == "" || c.AirtableBase == "" || c.AirtableTable == "" {
			return fmt.Errorf("SINK=airtable requires AIRTABLE_ACCESS_TOKEN, AIRTABLE_BASE_ID and AIRTABLE_TABLE_ID")
		}
	default:
		return fmt.Errorf("unknown SINK %q", c.Sink)
	}

	switch c.MissingTestPolicy {
	case PolicyFail, PolicySkip:
	default:
		return fmt.Errorf("unknown MISSING_TEST_POLICY %q", c.MissingTestPolicy)
	}
	return nil
}

// ValidateServer adds the checks only the HTTP mode needs.
func (c Config) ValidateServer() error {
	if len(strings.TrimSpace(c.InternalSharedSecret)) < 32 {
		return fmt.Errorf("INTERNAL_SHARED_SECRET must be at least 32 characters")
	}
	return nil
}

func envStr(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}

func envDur(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
