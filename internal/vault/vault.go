// internal/vault/vault.go
//
// Vault client wrapper for Formgate.
//
// Context
// -------
//   - Concurrency-safe wrapper around the HashiCorp Vault Go SDK.
//   - Adds simple KV-v2 helpers, per-key caching, and a background
//     token-renewal loop.
//   - The config loader resolves `vault:<mount/path>#<key>` references
//     through Resolve, so secrets stay out of YAML and dotenv files.
//
// Environment expectations
// ------------------------
//   - VAULT_ADDR  – scheme and host of the Vault server.
//   - VAULT_TOKEN – initial token (falls back to ~/.vault-token).
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	vaultapi "github.com/hashicorp/vault/api"
)

// Client is safe for concurrent use.  Create once at startup.  The zero
// value is invalid.
type Client struct {
	api   *vaultapi.Client
	logFn func(string, ...any)

	mu    sync.RWMutex
	cache map[string]cached // "<path>#<key>" → value + expiry
}

type cached struct {
	val string
	exp time.Time
}

// New constructs a Vault client and starts the token-renewal loop.  The
// loop ends when ctx is cancelled.
func New(ctx context.Context, logFn func(string, ...any)) (*Client, error) {
	if logFn == nil {
		logFn = func(string, ...any) {}
	}

	cfg := vaultapi.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}
	api, err := vaultapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		api.SetToken(tok)
	}

	c := &Client{api: api, logFn: logFn, cache: make(map[string]cached)}
	go c.renewLoop(ctx)
	return c, nil
}

// Resolve fetches a "<mount/path>#<key>" reference.  Results are cached
// for ttl when ttl > 0.
func (c *Client) Resolve(ctx context.Context, ref string, ttl time.Duration) (string, error) {
	path, key, ok := strings.Cut(ref, "#")
	if !ok || path == "" || key == "" {
		return "", fmt.Errorf("malformed vault reference %q (want path#key)", ref)
	}
	return c.GetKV(ctx, path, key, ttl)
}

// GetKV fetches one key from a KV-v2 secret, with optional TTL caching.
func (c *Client) GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error) {
	if secretPath == "" || key == "" {
		return "", errors.New("secret path and key must be non-empty")
	}

	canonical := secretPath + "#" + key
	if ttl > 0 {
		c.mu.RLock()
		cv, ok := c.cache[canonical]
		c.mu.RUnlock()
		if ok && time.Now().Before(cv.exp) {
			return cv.val, nil
		}
	}

	mount, rel, _ := strings.Cut(secretPath, "/")
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}

	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %q", key, secretPath)
	}
	sval, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s is not a string", canonical)
	}

	if ttl > 0 {
		c.mu.Lock()
		c.cache[canonical] = cached{val: sval, exp: time.Now().Add(ttl)}
		c.mu.Unlock()
	}
	return sval, nil
}

// renewLoop keeps the token alive.  Non-renewable tokens are probed
// hourly so a replaced token is picked up eventually.
func (c *Client) renewLoop(ctx context.Context) {
	for {
		sec, err := c.api.Auth().Token().RenewSelf(0)
		switch {
		case err != nil:
			c.logFn("vault: token renew failed: %v", err)
			if !sleep(ctx, 30*time.Second) {
				return
			}
		case sec == nil || sec.Auth == nil || !sec.Auth.Renewable:
			if !sleep(ctx, time.Hour) {
				return
			}
		default:
			// Renew again at half the lease.
			lease := time.Duration(sec.Auth.LeaseDuration) * time.Second
			if lease < time.Minute {
				lease = time.Minute
			}
			if !sleep(ctx, lease/2) {
				return
			}
		}
	}
}

// sleep waits d or until ctx is done; reports false on cancellation.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
