package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/spf13/viper"
	"github.com/tdex-network/tdex-escrow/internal/core/application"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

const (
	// ListeningPortKey is the port where the HTTP interface will listen on
	ListeningPortKey = "LISTENING_PORT"
	// DatadirKey is the local data directory to store the internal state of daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// ProgramIDKey is the hex encoded id of the program all escrow and vault
	// addresses are derived from
	ProgramIDKey = "PROGRAM_ID"
	// MinHoldingPeriodKey is the number of seconds a maker must wait after
	// opening an escrow before refunding it. Zero disables the check
	MinHoldingPeriodKey = "MIN_HOLDING_PERIOD"
	// StorageAssetKey is the hex encoded asset used to pay the storage deposit
	StorageAssetKey = "STORAGE_ASSET"
	// StorageDepositKey is the amount of storage asset reserved by every open
	// escrow. Zero disables the deposit
	StorageDepositKey = "STORAGE_DEPOSIT"
	// EnableFaucetKey enables minting of funds through the HTTP interface
	EnableFaucetKey = "ENABLE_FAUCET"
	// WebhookTimeoutKey is the timeout in seconds of webhook requests
	WebhookTimeoutKey = "WEBHOOK_TIMEOUT"
	// RateLimitKey is the max number of requests per second served by the HTTP
	// interface. Zero disables rate limiting
	RateLimitKey = "RATE_LIMIT"
	// CORSAllowedOriginsKey is the list of origins allowed for cross-origin
	// requests and event stream connections. Any if empty
	CORSAllowedOriginsKey = "CORS_ALLOWED_ORIGINS"
	// TLSKeyKey is the path of the the TLS key for the HTTP interface
	TLSKeyKey = "TLS_KEY"
	// TLSCertKey is the path of the the TLS certificate for the HTTP interface
	TLSCertKey = "TLS_CERT"
	// EnableProfilerKey enables periodic logging of memory statistics and dump
	// of the metrics on shutdown
	EnableProfilerKey = "ENABLE_PROFILER"
	// StatsIntervalKey defines interval in seconds for printing basic statistics
	StatsIntervalKey = "STATS_INTERVAL"

	DbLocation       = "db"
	WebhookLocation  = "webhooks"
	ProfilerLocation = "stats"

	// DefaultProgramID is sha256("tdex-escrow").
	DefaultProgramID = "89b5a14a8cfca728495a530194425bbf963de2bdaaf7e3533f95c27e11dad282"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("escrowd", false)

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("ESCROW")
	vip.AutomaticEnv()

	vip.SetDefault(ListeningPortKey, 9945)
	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DBTypeKey, application.DBBadger)
	vip.SetDefault(ProgramIDKey, DefaultProgramID)
	vip.SetDefault(MinHoldingPeriodKey, 0)
	vip.SetDefault(StorageDepositKey, 0)
	vip.SetDefault(EnableFaucetKey, false)
	vip.SetDefault(WebhookTimeoutKey, 15)
	vip.SetDefault(RateLimitKey, 100)
	vip.SetDefault(EnableProfilerKey, false)
	vip.SetDefault(StatsIntervalKey, 600)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetUint64(key string) uint64 {
	return vip.GetUint64(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

// GetStringSlice splits comma separated values, as they come from env vars.
func GetStringSlice(key string) []string {
	list := make([]string, 0)
	for _, v := range vip.GetStringSlice(key) {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				list = append(list, s)
			}
		}
	}
	return list
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

// GetSeconds returns the value of key, an integer number of seconds, as a
// duration.
func GetSeconds(key string) time.Duration {
	return time.Duration(vip.GetInt64(key)) * time.Second
}

func GetProgramID() domain.Pubkey {
	programID, _ := domain.NewPubkeyFromString(GetString(ProgramIDKey))
	return programID
}

func GetPolicy() domain.Policy {
	var storageAsset domain.Pubkey
	if str := GetString(StorageAssetKey); str != "" {
		storageAsset, _ = domain.NewPubkeyFromString(str)
	}
	return domain.Policy{
		MinHoldingPeriod: GetSeconds(MinHoldingPeriodKey),
		StorageAsset:     storageAsset,
		StorageDeposit:   GetUint64(StorageDepositKey),
	}
}

// GetDBConfig returns the db config expected by the application for the
// configured db type.
func GetDBConfig() interface{} {
	if GetString(DBTypeKey) == application.DBInMemory {
		return nil
	}
	return filepath.Join(GetDatadir(), DbLocation)
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	dbType := GetString(DBTypeKey)
	if _, ok := application.SupportedDBType[dbType]; !ok {
		return fmt.Errorf("db type %s not supported", dbType)
	}

	programID, err := domain.NewPubkeyFromString(GetString(ProgramIDKey))
	if err != nil {
		return fmt.Errorf("invalid program id: %s", err)
	}
	if programID.IsZero() {
		return fmt.Errorf("program id must not be zero")
	}

	if vip.GetInt64(MinHoldingPeriodKey) < 0 {
		return fmt.Errorf("%s must not be negative", MinHoldingPeriodKey)
	}
	if str := GetString(StorageAssetKey); str != "" {
		if _, err := domain.NewPubkeyFromString(str); err != nil {
			return fmt.Errorf("invalid storage asset: %s", err)
		}
	}
	if err := GetPolicy().Validate(); err != nil {
		return err
	}

	if GetInt(WebhookTimeoutKey) <= 0 {
		return fmt.Errorf("%s must be greater than zero", WebhookTimeoutKey)
	}
	if GetInt(RateLimitKey) < 0 {
		return fmt.Errorf("%s must not be negative", RateLimitKey)
	}

	tlsKey, tlsCert := GetString(TLSKeyKey), GetString(TLSCertKey)
	if (tlsKey == "" && tlsCert != "") || (tlsKey != "" && tlsCert == "") {
		return fmt.Errorf(
			"TLS for HTTP interface requires both key and certificate when enabled",
		)
	}

	return nil
}

func initDatadir() error {
	datadir := GetDatadir()
	if err := makeDirectoryIfNotExists(filepath.Join(datadir, DbLocation)); err != nil {
		return err
	}
	if err := makeDirectoryIfNotExists(filepath.Join(datadir, WebhookLocation)); err != nil {
		return err
	}

	profilerEnabled := GetBool(EnableProfilerKey)
	if profilerEnabled {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, ProfilerLocation)); err != nil {
			return err
		}
	}
	return nil
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
