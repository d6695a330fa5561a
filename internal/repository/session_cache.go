package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	revokedPrefix   = "auth:revoked:"
	usuarioPrefix   = "usuario:auth:"
	usuarioCacheTTL = 2 * time.Minute
)

// SessionCache keeps the logout deny-list and a short-lived copy of the
// usuario resolved for a provider subject.
type SessionCache interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	// GetUsuario returns nil, nil on a cache miss.
	GetUsuario(ctx context.Context, sub uuid.UUID) (*model.Usuario, error)
	SetUsuario(ctx context.Context, sub uuid.UUID, u *model.Usuario) error
	Invalidate(ctx context.Context, sub uuid.UUID) error
}

type sessionCache struct{ rdb *redis.Client }

func NewSessionCache(rdb *redis.Client) SessionCache { return &sessionCache{rdb: rdb} }

// tokens are never stored in clear
func revokedKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return revokedPrefix + hex.EncodeToString(sum[:])
}

func (c *sessionCache) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := c.rdb.Exists(ctx, revokedKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("session cache: exists: %w", err)
	}
	return n > 0, nil
}

func (c *sessionCache) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return c.rdb.Set(ctx, revokedKey(token), 1, ttl).Err()
}

func (c *sessionCache) GetUsuario(ctx context.Context, sub uuid.UUID) (*model.Usuario, error) {
	raw, err := c.rdb.Get(ctx, usuarioPrefix+sub.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session cache: get: %w", err)
	}
	var u model.Usuario
	if err := json.Unmarshal(raw, &u); err != nil {
		// a stale layout is treated as a miss
		return nil, nil
	}
	return &u, nil
}

func (c *sessionCache) SetUsuario(ctx context.Context, sub uuid.UUID, u *model.Usuario) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, usuarioPrefix+sub.String(), raw, usuarioCacheTTL).Err()
}

func (c *sessionCache) Invalidate(ctx context.Context, sub uuid.UUID) error {
	return c.rdb.Del(ctx, usuarioPrefix+sub.String()).Err()
}
