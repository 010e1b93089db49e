package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/promptforge/promptforge-api/internal/catalog"
	"github.com/promptforge/promptforge-api/internal/domain"
	"github.com/promptforge/promptforge-api/internal/provider"
	"github.com/promptforge/promptforge-api/internal/quota"
	"github.com/promptforge/promptforge-api/internal/repo"
)

// newServiceDB opens a file-backed SQLite database (busy timeout set) so the
// background persister and the test goroutine can both write.
func newServiceDB(t *testing.T, migrate bool) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "svc.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Logger = logger.Default.LogMode(logger.Silent)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if migrate {
		if err := repo.AutoMigrate(db); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

// recordingCompleter returns a fixed reply and remembers every instruction.
type recordingCompleter struct {
	mu           sync.Mutex
	reply        provider.Reply
	instructions []string
}

func (c *recordingCompleter) Invoke(_ context.Context, instruction string) provider.Reply {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instructions = append(c.instructions, instruction)
	return c.reply
}

func (c *recordingCompleter) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.instructions)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*domain.PromptRequest
	err    error
}

func (p *recordingPublisher) PublishPromptCompleted(_ context.Context, rec *domain.PromptRequest) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, rec)
	return p.err
}

type failingGuard struct{}

func (failingGuard) Authorize(context.Context, string, int) (quota.Decision, error) {
	return quota.Decision{}, errors.New("redis: connection refused")
}

func (failingGuard) Peek(context.Context, string, int) (quota.Decision, error) {
	return quota.Decision{}, errors.New("redis: connection refused")
}

type fixture struct {
	db    *gorm.DB
	svc   *PromptService
	users *UserService
	guard *quota.MemoryGuard
	llm   *recordingCompleter
	pub   *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newServiceDB(t, true)
	users := NewUserService(db, domain.DefaultRequestLimit)
	guard := quota.NewMemoryGuard(quota.DefaultWindow)
	llm := &recordingCompleter{reply: provider.Reply{Text: "All good"}}
	pub := &recordingPublisher{}
	svc := &PromptService{
		DB:             db,
		Catalog:        catalog.MustLoad(),
		Quota:          guard,
		Gateway:        llm,
		Limits:         users,
		Events:         pub,
		MaxPromptRunes: 100,
	}
	t.Cleanup(svc.Wait)
	return &fixture{db: db, svc: svc, users: users, guard: guard, llm: llm, pub: pub}
}

func countRecords(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&domain.PromptRequest{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

// blockingPublisher parks the background save inside the publish step until
// release is closed.
type blockingPublisher struct {
	entered chan struct{}
	release chan struct{}
}

func newBlockingPublisher() *blockingPublisher {
	return &blockingPublisher{entered: make(chan struct{}, 1), release: make(chan struct{})}
}

func (p *blockingPublisher) PublishPromptCompleted(context.Context, *domain.PromptRequest) error {
	p.entered <- struct{}{}
	<-p.release
	return nil
}
