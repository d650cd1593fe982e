package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/datawise-ai/advisor-engine/pkg/models"
)

const (
	sessionKeyPrefix = "advisor:session:"
	sessionTTL       = 24 * time.Hour
)

// SessionRegistry tracks which sessions have been active recently. The
// registry is advisory: chat works without it, and every write is best
// effort. Backed by Redis; a nil client disables it entirely.
type SessionRegistry interface {
	// Touch records activity on a session, extending its registry TTL.
	Touch(ctx context.Context, sessionID uuid.UUID)
	// List returns active sessions, most recently seen first.
	List(ctx context.Context) ([]models.SessionInfo, error)
	// Remove drops a session from the registry.
	Remove(ctx context.Context, sessionID uuid.UUID)
}

type sessionRegistry struct {
	client *redis.Client
	logger *zap.Logger
}

func NewSessionRegistry(client *redis.Client, logger *zap.Logger) SessionRegistry {
	return &sessionRegistry{
		client: client,
		logger: logger.Named("sessions"),
	}
}

var _ SessionRegistry = (*sessionRegistry)(nil)

func (r *sessionRegistry) Touch(ctx context.Context, sessionID uuid.UUID) {
	if r.client == nil {
		return
	}
	key := sessionKeyPrefix + sessionID.String()
	seen := time.Now().UTC().Format(time.RFC3339)
	if err := r.client.Set(ctx, key, seen, sessionTTL).Err(); err != nil {
		r.logger.Debug("failed to touch session",
			zap.String("session_id", sessionID.String()), zap.Error(err))
	}
}

func (r *sessionRegistry) List(ctx context.Context) ([]models.SessionInfo, error) {
	if r.client == nil {
		return []models.SessionInfo{}, nil
	}

	var keys []string
	iter := r.client.Scan(ctx, 0, sessionKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []models.SessionInfo{}, nil
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	sessions := make([]models.SessionInfo, 0, len(keys))
	for i, key := range keys {
		info := models.SessionInfo{
			SessionID: strings.TrimPrefix(key, sessionKeyPrefix),
		}
		// Keys can expire between SCAN and MGET; a nil value still counts,
		// just with a zero LastSeen.
		if raw, ok := values[i].(string); ok {
			if seen, err := time.Parse(time.RFC3339, raw); err == nil {
				info.LastSeen = seen
			}
		}
		sessions = append(sessions, info)
	}

	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].LastSeen.Equal(sessions[j].LastSeen) {
			return sessions[i].LastSeen.After(sessions[j].LastSeen)
		}
		return sessions[i].SessionID < sessions[j].SessionID
	})
	return sessions, nil
}

func (r *sessionRegistry) Remove(ctx context.Context, sessionID uuid.UUID) {
	if r.client == nil {
		return
	}
	if err := r.client.Del(ctx, sessionKeyPrefix+sessionID.String()).Err(); err != nil {
		r.logger.Debug("failed to remove session",
			zap.String("session_id", sessionID.String()), zap.Error(err))
	}
}
