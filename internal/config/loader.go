// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `conf/.env` dotenv file.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `FORMGATE_`, where `__` maps to “.”
     (e.g., `FORMGATE_HTTP__LISTEN_ADDR → http.listen_addr`).

After merging, the tree is unmarshalled into strongly-typed structs,
given defaults, validated, enriched with the runtime root path, and
cached in an `atomic.Pointer` for lock-free reads.  `Reload()` simply
calls `Load()` again and swaps the pointer.

Values of the form `vault:<mount/path>#<key>` are left in place by
`Load()`; `ResolveSecrets()` swaps them for the referenced Vault KV-v2
values and must run before the config is used to open connections.

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/global.yaml`,
    so `go run ./cmd/web` works from any sub-directory.  FORMGATE_ROOT
    overrides discovery.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot
    issues surface even before the file logger is installed.
*/
package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/mrdlabs/formgate/internal/vault"
)

var current atomic.Pointer[Config]

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves FORMGATE_ROOT or climbs directories until
// conf/global.yaml is found.  Falls back to the executable heuristic for
// the production layout (<root>/bin/formgate).
func rootDir() string {
	if r := os.Getenv("FORMGATE_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, env overrides, applies defaults, validates, and
// caches Config.
func Load() (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}

	// Env overrides: FORMGATE_SINK__URL → sink.url
	if err := k.Load(env.Provider("FORMGATE_", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, "FORMGATE_"), "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	applyDefaults(&cfg)
	cfg.Paths.Root = root
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"sink_enabled", cfg.Sink.URL != "",
		"mail_transport", cfg.Mail.Transport,
		"mirror_enabled", cfg.Database.MirrorDSN != "",
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

// applyDefaults fills values the YAML may omit.
func applyDefaults(cfg *Config) {
	if cfg.Store.SubmissionsPath == "" {
		cfg.Store.SubmissionsPath = filepath.Join("data", "submissions.csv")
	}
	if cfg.Store.EmailLogPath == "" {
		cfg.Store.EmailLogPath = filepath.Join("data", "email-log.json")
	}
	if cfg.Sink.TimeoutSeconds == 0 {
		cfg.Sink.TimeoutSeconds = 10
	}
	if cfg.Mail.Transport == "" {
		cfg.Mail.Transport = "log"
	}
}

/*──────────────────────────── secret resolution ───────────────────────────*/

const vaultPrefix = "vault:"

// ResolveSecrets replaces `vault:<path>#<key>` values in cfg with the
// referenced secrets.  A Vault client is only constructed when at least
// one reference exists, so setups without Vault never touch it.
func ResolveSecrets(ctx context.Context, cfg *Config) error {
	refs := []*string{
		&cfg.Sink.URL,
		&cfg.Mail.SES.AccessKey,
		&cfg.Mail.SES.SecretKey,
		&cfg.Database.MirrorDSN,
	}

	var cli *vault.Client
	for _, ref := range refs {
		if !strings.HasPrefix(*ref, vaultPrefix) {
			continue
		}
		if cli == nil {
			var err error
			cli, err = vault.New(ctx, zap.S().Infof)
			if err != nil {
				return err
			}
		}
		val, err := cli.Resolve(ctx, strings.TrimPrefix(*ref, vaultPrefix), time.Hour)
		if err != nil {
			return err
		}
		*ref = val
	}
	return nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config  { return current.Load() }
func Reload() error { _, err := Load(); return err }
