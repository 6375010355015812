package ideas

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/videa-app/videa/internal/logging"
	"github.com/videa-app/videa/internal/models"
)

// ErrStoreUnavailable reports that persistence was requested but no idea
// store is configured.
var ErrStoreUnavailable = errors.New("idea storage is unavailable")

const (
	recentBufferSize = 10
	recentStoreLimit = 3
)

// Store persists ideas per user.
type Store interface {
	Create(ctx context.Context, idea models.VideoIdea) error
	ListByUser(ctx context.Context, userID string) ([]models.VideoIdea, error)
	Delete(ctx context.Context, id, userID string) (int64, error)
	Recent(ctx context.Context, limit int) ([]models.VideoIdea, error)
}

// RecentBuffer keeps the latest generated ideas in memory, newest first.
type RecentBuffer struct {
	mu    sync.Mutex
	ideas []models.VideoIdea
	max   int
}

func NewRecentBuffer() *RecentBuffer {
	return &RecentBuffer{max: recentBufferSize}
}

// Add prepends an idea, evicting the oldest past capacity.
func (b *RecentBuffer) Add(idea models.VideoIdea) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.ideas = append([]models.VideoIdea{idea}, b.ideas...)
	if len(b.ideas) > b.max {
		b.ideas = b.ideas[:b.max]
	}
}

// List returns a copy of the buffered ideas, newest first.
func (b *RecentBuffer) List() []models.VideoIdea {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]models.VideoIdea, len(b.ideas))
	copy(out, b.ideas)
	return out
}

// Service coordinates idea generation and persistence. The store is
// optional: without one, generation still works and recent ideas come from
// the in-memory buffer.
type Service struct {
	synth  *Synthesizer
	store  Store
	recent *RecentBuffer
	logger *logging.Logger

	now func() time.Time
}

func NewService(synth *Synthesizer, store Store, logger *logging.Logger) *Service {
	return &Service{
		synth:  synth,
		store:  store,
		recent: NewRecentBuffer(),
		logger: logger,
		now:    time.Now,
	}
}

// Generate produces a new idea and records it in the recent buffer.
func (s *Service) Generate(ctx context.Context, req models.IdeaRequest) (*models.VideoIdea, error) {
	idea, err := s.synth.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	s.recent.Add(*idea)
	return idea, nil
}

// Save persists an idea for a user. Missing server-side fields are filled
// in before the write.
func (s *Service) Save(ctx context.Context, userID string, idea models.VideoIdea) (models.VideoIdea, error) {
	if s.store == nil {
		return models.VideoIdea{}, ErrStoreUnavailable
	}

	if idea.ID == "" {
		idea.ID = uuid.NewString()
	}
	if idea.CreatedAt.IsZero() {
		idea.CreatedAt = s.now()
	}
	idea.UserID = userID
	idea.IsSaved = true

	if err := s.store.Create(ctx, idea); err != nil {
		return models.VideoIdea{}, fmt.Errorf("save idea: %w", err)
	}
	return idea, nil
}

// ListSaved returns the ideas a user has saved, newest first.
func (s *Service) ListSaved(ctx context.Context, userID string) ([]models.VideoIdea, error) {
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}
	return s.store.ListByUser(ctx, userID)
}

// Delete removes a user's idea. Deleting an idea that does not exist, or
// that belongs to someone else, is not an error.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	if s.store == nil {
		return ErrStoreUnavailable
	}

	rows, err := s.store.Delete(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete idea: %w", err)
	}
	if rows == 0 {
		s.logger.Debug("Delete matched no rows",
			logging.WithFields(map[string]interface{}{"id": id, "userId": userID}))
	}
	return nil
}

// Recent returns the latest ideas, preferring the store and falling back
// to the in-memory buffer when the store is missing or failing.
func (s *Service) Recent(ctx context.Context) []models.VideoIdea {
	if s.store != nil {
		ideas, err := s.store.Recent(ctx, recentStoreLimit)
		if err == nil {
			return ideas
		}
		s.logger.Warn("Recent ideas query failed, serving buffer",
			logging.WithField("error", err.Error()))
	}
	return s.recent.List()
}
