// internal/config/model.go
//
// Typed configuration model for Formgate.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `conf/.env`                       – dotenv values,
//   • `conf/global.yaml`                         – primary static file,
//   • `FORMGATE_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client after unmarshalling, so secrets never sit in
// flat files or git history.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml`
//     tags unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.

package config

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
}

//
// Store section
//

// Store locates the append-only submission file and the bounded email
// send log.  Relative paths are resolved against Paths.Root.
type Store struct {
	SubmissionsPath string `koanf:"submissions_path" validate:"required"`
	EmailLogPath    string `koanf:"email_log_path"   validate:"required"`
}

//
// Sink section
//

// Sink configures the spreadsheet webhook mirror.  An empty URL disables
// forwarding; every intake response then reports sheet_updated=false.
type Sink struct {
	URL            string `koanf:"url"`
	TimeoutSeconds int    `koanf:"timeout_seconds" validate:"omitempty,min=1"`
}

//
// Mail section
//

// SES holds static credentials for the SES v2 transport.  The key fields
// accept `vault:` references.
type SES struct {
	Region    string `koanf:"region"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
}

// Mail selects and configures the outbound transport.  "log" records the
// send without delivering, which is the development default; "ses"
// delivers through AWS SES v2.
type Mail struct {
	Transport string `koanf:"transport" validate:"omitempty,oneof=log ses"`
	From      string `koanf:"from"      validate:"required,email"`
	SES       SES    `koanf:"ses"`
}

//
// Database section
//

// Database holds the optional MySQL mirror DSN.  Empty disables the
// mirror.  The DSN accepts a `vault:` reference.
type Database struct {
	MirrorDSN string `koanf:"mirror_dsn"`
}

//
// Geo section
//

// Geo points at an optional GeoLite2 database used to enrich request
// logs.  Lookups are best-effort; an empty path disables them.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or FORMGATE_ROOT override) so later code
// can build absolute file paths.
type Paths struct {
	Root string
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Store    Store    `koanf:"store"`
	Sink     Sink     `koanf:"sink"`
	Mail     Mail     `koanf:"mail"`
	Database Database `koanf:"database"`
	Geo      Geo      `koanf:"geo"`
	Paths    Paths    `koanf:"-"`
}
