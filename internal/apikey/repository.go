package apikey

import (
	"context"
	"fmt"
	"strings"
	"time"

	"imagecraft/internal/infra"
	"imagecraft/internal/sqlinline"
)

// Record is the stored view of a key. The hash never leaves the repository.
type Record struct {
	ID                 string    `json:"id"`
	DeviceID           string    `json:"device_id"`
	Name               string    `json:"name,omitempty"`
	Prefix             string    `json:"prefix"`
	Enabled            bool      `json:"enabled"`
	RateLimitPerMinute int       `json:"rate_limit_per_minute"`
	CreatedAt          time.Time `json:"created_at"`
}

// Issued is returned once on creation.
type Issued struct {
	ID        string
	APIKey    string
	Prefix    string
	CreatedAt time.Time
}

// Repository persists keys in the api_keys table.
type Repository struct {
	sql          infra.SQLExecutor
	hasher       *Hasher
	defaultLimit int
	random       func() (Minted, error)
}

func NewRepository(sql infra.SQLExecutor, hasher *Hasher, defaultLimit int) *Repository {
	if defaultLimit <= 0 {
		defaultLimit = 60
	}
	return &Repository{
		sql:          sql,
		hasher:       hasher,
		defaultLimit: defaultLimit,
		random:       func() (Minted, error) { return Mint(nil) },
	}
}

// Migrate creates the api_keys table when it does not exist.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.sql.Exec(ctx, sqlinline.QCreateAPIKeysTable); err != nil {
		return fmt.Errorf("apikey: migrate: %w", err)
	}
	return nil
}

// Create mints a key for deviceID and stores only its hash. Nothing is
// written when the insert fails.
func (r *Repository) Create(ctx context.Context, deviceID, name string) (Issued, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return Issued{}, ErrDeviceRequired
	}
	minted, err := r.random()
	if err != nil {
		return Issued{}, err
	}
	var out Issued
	row := r.sql.QueryRow(ctx, sqlinline.QInsertAPIKey,
		deviceID, strings.TrimSpace(name), minted.Prefix, r.hasher.Hash(minted.Plain), r.defaultLimit)
	if err := row.Scan(&out.ID, &out.Prefix, &out.CreatedAt); err != nil {
		return Issued{}, fmt.Errorf("apikey: insert: %w", err)
	}
	out.APIKey = minted.Plain
	return out, nil
}

// Validate resolves a presented key to its record.
func (r *Repository) Validate(ctx context.Context, key string) (Record, error) {
	key = strings.TrimSpace(key)
	if _, ok := PrefixOf(key); !ok {
		return Record{}, ErrInvalidKey
	}
	var rec Record
	row := r.sql.QueryRow(ctx, sqlinline.QSelectAPIKeyByHash, r.hasher.Hash(key))
	err := row.Scan(&rec.ID, &rec.DeviceID, &rec.Name, &rec.Prefix, &rec.Enabled, &rec.RateLimitPerMinute, &rec.CreatedAt)
	if err != nil {
		if infra.IsNoRows(err) {
			return Record{}, ErrInvalidKey
		}
		return Record{}, fmt.Errorf("apikey: lookup: %w", err)
	}
	if !rec.Enabled {
		return rec, ErrDisabled
	}
	return rec, nil
}

// ListByDevice returns the newest keys issued to a device.
func (r *Repository) ListByDevice(ctx context.Context, deviceID string, limit int) ([]Record, error) {
	if strings.TrimSpace(deviceID) == "" {
		return nil, ErrDeviceRequired
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.sql.Query(ctx, sqlinline.QListAPIKeysByDevice, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("apikey: list: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.DeviceID, &rec.Name, &rec.Prefix, &rec.Enabled, &rec.RateLimitPerMinute, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("apikey: scan: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Disable turns off every key with the given prefix and reports how many changed.
func (r *Repository) Disable(ctx context.Context, prefix string) (int64, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if len(prefix) != PrefixLength {
		return 0, fmt.Errorf("apikey: prefix must be %d characters", PrefixLength)
	}
	tag, err := r.sql.Exec(ctx, sqlinline.QDisableAPIKeyByPrefix, prefix)
	if err != nil {
		return 0, fmt.Errorf("apikey: disable: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SetRateLimit changes the per-minute allowance of a key.
func (r *Repository) SetRateLimit(ctx context.Context, prefix string, perMinute int) (int64, error) {
	if perMinute <= 0 {
		return 0, fmt.Errorf("apikey: rate limit must be positive")
	}
	tag, err := r.sql.Exec(ctx, sqlinline.QUpdateAPIKeyRateLimit, strings.ToLower(strings.TrimSpace(prefix)), perMinute)
	if err != nil {
		return 0, fmt.Errorf("apikey: set rate limit: %w", err)
	}
	return tag.RowsAffected(), nil
}
