package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/plateledger/internal/flagx"
)

var allowedFlags = []string{
	"-a", "-m", "-d", "-s", "-t", "-l",
	"-window", "-tolerance", "-tz", "-timeout", "-retries", "-report-at", "-redis",
	"-u", "-p", "-b", "-g", "-e",
}

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string          gRPC bind address (e.g., ":50051")
//	-m string          metrics/health HTTP bind address
//	-d string          PostgreSQL DSN
//	-s string          JWT HMAC secret key
//	-t int             access token validity, minutes
//	-l string          log level (debug, info, warn, error)
//	-window duration   dedup window
//	-tolerance duration
//	-tz string         report time zone
//	-timeout duration  per-operation timeout
//	-retries int       attempts on serialization failure
//	-report-at string  end-of-day report time, "HH:MM"
//	-redis string      redis address for the shared report cache
//	-u, -p, -b, -g, -e S3 user, password, bucket, region, endpoint
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], allowedFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.EndpointAddrHTTP, "m", config.EndpointAddrHTTP, "address and port for metrics")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	fs.DurationVar(&config.DedupWindow, "window", config.DedupWindow, "dedup window")
	fs.DurationVar(&config.DedupTolerance, "tolerance", config.DedupTolerance, "dedup tolerance")
	fs.StringVar(&config.Timezone, "tz", config.Timezone, "time zone for daily grouping")
	fs.DurationVar(&config.OperationTimeout, "timeout", config.OperationTimeout, "per-operation timeout")
	fs.IntVar(&config.RetryAttempts, "retries", config.RetryAttempts, "attempts on serialization failure")
	fs.StringVar(&config.ReportAt, "report-at", config.ReportAt, "end-of-day report time (HH:MM)")
	fs.StringVar(&config.ReportCacheRedis, "redis", config.ReportCacheRedis, "redis address for report cache")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket for roster snapshots")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
}
