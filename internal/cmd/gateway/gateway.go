// Package gateway parses configuration for the gateway command and runs it.
package gateway

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/lunargate/lunargate/internal/platform/config"
	server "github.com/lunargate/lunargate/internal/services/gateway/app"
	"github.com/lunargate/lunargate/internal/services/gateway/dispatch"
)

// Run modes. Hybrid deployments co-host the gameplay server and may run
// without an explicit region table.
const (
	RunModeDispatch = "dispatch"
	RunModeHybrid   = "hybrid"
)

// Config holds gateway command configuration.
type Config struct {
	HTTPAddr   string `env:"LUNARGATE_HTTP_ADDR" envDefault:":8080"`
	HealthPort int    `env:"LUNARGATE_HEALTH_PORT" envDefault:"8081"`
	DBPath     string `env:"LUNARGATE_DB_PATH" envDefault:"data/gateway.db"`

	RunMode     string `env:"LUNARGATE_RUN_MODE" envDefault:"dispatch"`
	SDKVersion  string `env:"LUNARGATE_SDK_VERSION" envDefault:"2.7.0"`
	GameVersion string `env:"LUNARGATE_GAME_VERSION" envDefault:"2.8.0"`
	MaxPlayers  int    `env:"LUNARGATE_MAX_PLAYERS" envDefault:"-1"`
	AutoCreate  bool   `env:"LUNARGATE_AUTO_CREATE" envDefault:"true"`

	DispatchDomain     string `env:"LUNARGATE_DISPATCH_DOMAIN" envDefault:"http://localhost:8080"`
	RegionsPath        string `env:"LUNARGATE_REGIONS_PATH"`
	GameHost           string `env:"LUNARGATE_GAME_HOST" envDefault:"127.0.0.1"`
	GamePort           uint   `env:"LUNARGATE_GAME_PORT" envDefault:"22101"`
	DefaultRegionTitle string `env:"LUNARGATE_DEFAULT_REGION_TITLE" envDefault:"Gateway"`

	// SecretKeyHex seeds region payloads; empty means an ephemeral key is
	// generated at startup. ObfuscationKeyHex masks the client config blob.
	SecretKeyHex      string `env:"LUNARGATE_SECRET_KEY"`
	ObfuscationKeyHex string `env:"LUNARGATE_OBFUSCATION_KEY"`
}

// ParseConfig loads Config from the environment and then flags, flags
// winning. A nil environ reads the process environment.
func ParseConfig(fs *flag.FlagSet, args []string, environ map[string]string) (Config, error) {
	var cfg Config
	var err error
	if environ == nil {
		err = config.ParseEnv(&cfg)
	} else {
		err = config.ParseEnvFrom(&cfg, environ)
	}
	if err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "The gateway HTTP listen address")
	fs.IntVar(&cfg.HealthPort, "health-port", cfg.HealthPort, "The gRPC health port, 0 to disable")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The account database path")
	fs.StringVar(&cfg.RunMode, "run-mode", cfg.RunMode, "Run mode: dispatch or hybrid")
	fs.StringVar(&cfg.SDKVersion, "sdk-version", cfg.SDKVersion, "Accepted login client version fragment")
	fs.StringVar(&cfg.GameVersion, "game-version", cfg.GameVersion, "Gameplay version enforced on region queries")
	fs.IntVar(&cfg.MaxPlayers, "max-players", cfg.MaxPlayers, "Login capacity, -1 for unlimited")
	fs.BoolVar(&cfg.AutoCreate, "auto-create", cfg.AutoCreate, "Register unknown usernames at login")
	fs.StringVar(&cfg.DispatchDomain, "dispatch-domain", cfg.DispatchDomain, "Public base URL for per-region dispatch URLs")
	fs.StringVar(&cfg.RegionsPath, "regions", cfg.RegionsPath, "Path to the region table JSON file")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.RunMode != RunModeDispatch && cfg.RunMode != RunModeHybrid {
		return Config{}, fmt.Errorf("unknown run mode %q", cfg.RunMode)
	}
	return cfg, nil
}

// Run starts the gateway server.
func Run(ctx context.Context, cfg Config) error {
	regions, err := loadRegions(cfg.RegionsPath)
	if err != nil {
		return err
	}
	secretKey, err := decodeHexKey("secret key", cfg.SecretKeyHex)
	if err != nil {
		return err
	}
	obfuscationKey, err := decodeHexKey("obfuscation key", cfg.ObfuscationKeyHex)
	if err != nil {
		return err
	}

	return server.Run(ctx, server.Config{
		HTTPAddr:    cfg.HTTPAddr,
		HealthPort:  cfg.HealthPort,
		DBPath:      cfg.DBPath,
		SDKVersion:  cfg.SDKVersion,
		GameVersion: cfg.GameVersion,
		MaxPlayers:  cfg.MaxPlayers,
		AutoCreate:  cfg.AutoCreate,
		Dispatch: dispatch.Config{
			Regions:            regions,
			Hybrid:             cfg.RunMode == RunModeHybrid,
			DefaultRegionTitle: cfg.DefaultRegionTitle,
			GameHost:           cfg.GameHost,
			GamePort:           uint32(cfg.GamePort),
			DispatchDomain:     cfg.DispatchDomain,
			SecretKey:          secretKey,
			ObfuscationKey:     obfuscationKey,
		},
	})
}

// loadRegions reads the region table JSON file: an array of
// {name, title, ip, port} objects. An empty path yields no regions.
func loadRegions(path string) ([]dispatch.Region, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read regions file: %w", err)
	}
	var regions []dispatch.Region
	if err := json.Unmarshal(data, &regions); err != nil {
		return nil, fmt.Errorf("parse regions file %s: %w", path, err)
	}
	return regions, nil
}

func decodeHexKey(name, value string) ([]byte, error) {
	if value == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return key, nil
}
