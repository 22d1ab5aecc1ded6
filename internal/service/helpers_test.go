package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type recordedEvent struct {
	Topic string
	Key   string
	Event map[string]any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, _ := event.(map[string]any)
	p.events = append(p.events, recordedEvent{Topic: topic, Key: key, Event: m})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Event["type"].(string))
	}
	return out
}

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()

	gdb, err := db.Open(context.Background(), db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })

	return repo.New(gdb)
}

func newTestAuth(t *testing.T, r *repo.GormRepo, pub *recordingPublisher) *AuthService {
	t.Helper()
	return &AuthService{
		Repo:   r,
		Secret: []byte("test-session-secret"),
		TTL:    time.Hour,
		Events: pub,
	}
}

func mustUser(t *testing.T, r *repo.GormRepo, username string) *models.User {
	t.Helper()
	svc := newTestAuth(t, r, &recordingPublisher{})
	u, err := svc.CreateUser(context.Background(), username, "password")
	require.NoError(t, err)
	return u
}

func strPtr(s string) *string { return &s }
