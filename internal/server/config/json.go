package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/plateledger/internal/flagx"
	"github.com/dmitrijs2005/plateledger/internal/timex"
	"github.com/tidwall/jsonc"
)

// JsonConfig is the on-disk shape of the configuration file. Comments and
// trailing commas are allowed. Durations
// accept both "1s" strings and integer nanoseconds. Absent fields keep the
// value already in Config.
type JsonConfig struct {
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	LogLevel                    string         `json:"log_level"`

	DedupWindow    timex.Duration `json:"dedup_window"`
	DedupTolerance timex.Duration `json:"dedup_tolerance"`
	Timezone       string         `json:"timezone"`

	RepeatCountsPageSize int `json:"repeat_counts_page_size"`
	DailyTotalsPageSize  int `json:"daily_totals_page_size"`
	UserActivityPageSize int `json:"user_activity_page_size"`
	BulkChangesPageSize  int `json:"bulk_changes_page_size"`

	OperationTimeout timex.Duration `json:"operation_timeout"`
	RetryAttempts    int            `json:"retry_attempts"`

	ReportAt         string         `json:"report_at"`
	ReportCacheSize  int            `json:"report_cache_size"`
	ReportCacheTTL   timex.Duration `json:"report_cache_ttl"`
	ReportCacheRedis string         `json:"report_cache_redis"`

	S3RootUser     string `json:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`
}

// parseJson overlays the JSON file named by -c/-config onto config. Without
// the flag nothing is loaded. An unreadable or malformed file panics.
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
	if err := json.Unmarshal(jsonc.ToJSON(file), c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setString(&config.LogLevel, c.LogLevel)

	setDuration(&config.DedupWindow, c.DedupWindow)
	setDuration(&config.DedupTolerance, c.DedupTolerance)
	setString(&config.Timezone, c.Timezone)

	setInt(&config.RepeatCountsPageSize, c.RepeatCountsPageSize)
	setInt(&config.DailyTotalsPageSize, c.DailyTotalsPageSize)
	setInt(&config.UserActivityPageSize, c.UserActivityPageSize)
	setInt(&config.BulkChangesPageSize, c.BulkChangesPageSize)

	setDuration(&config.OperationTimeout, c.OperationTimeout)
	setInt(&config.RetryAttempts, c.RetryAttempts)

	setString(&config.ReportAt, c.ReportAt)
	setInt(&config.ReportCacheSize, c.ReportCacheSize)
	setDuration(&config.ReportCacheTTL, c.ReportCacheTTL)
	setString(&config.ReportCacheRedis, c.ReportCacheRedis)

	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
