package tasks

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store owns the task collection. Every mutation goes through it so the
// slot is written after each change.
type Store struct {
	mu     sync.Mutex
	tasks  []Task // newest first
	slot   Slot
	key    string
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// Open loads the collection stored under key and returns a store that
// writes back to the same slot.
func Open(ctx context.Context, slot Slot, key string, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		slot:   slot,
		key:    key,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tasks = Load(ctx, slot, key, logger)
	logger.Info("task store opened", slog.String("key", key), slog.Int("tasks", len(s.tasks)))
	return s
}

// Add prepends a new task. Blank text is ignored. An empty or unknown
// priority becomes medium and an empty category becomes General.
func (s *Store) Add(ctx context.Context, text string, priority Priority, category string) (Task, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Task{}, false
	}

	p, err := ParsePriority(string(priority))
	if err != nil {
		s.logger.Debug("unknown priority, using medium", slog.String("priority", string(priority)))
		p = PriorityMedium
	}
	if strings.TrimSpace(category) == "" {
		category = DefaultCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := Task{
		ID:        s.newID(),
		Text:      text,
		Priority:  p,
		Category:  category,
		CreatedAt: s.now().UnixMilli(),
	}

	next := make([]Task, 0, len(s.tasks)+1)
	next = append(next, t)
	next = append(next, s.tasks...)
	s.tasks = next

	s.persist(ctx)
	return t, true
}

// Toggle flips completed on the task with id. Unknown ids are ignored.
func (s *Store) Toggle(ctx context.Context, id string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Task{}, false
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	t := s.tasks[i]

	s.persist(ctx)
	return t, true
}

// Delete removes the task with id. Unknown ids are ignored.
func (s *Store) Delete(ctx context.Context, id string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Task{}, false
	}
	t := s.tasks[i]

	next := make([]Task, 0, len(s.tasks)-1)
	next = append(next, s.tasks[:i]...)
	next = append(next, s.tasks[i+1:]...)
	s.tasks = next

	s.persist(ctx)
	return t, true
}

// Tasks returns a copy of the collection, newest first.
func (s *Store) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Store) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// persist is best-effort: the in-memory collection stays authoritative.
// Caller holds s.mu.
func (s *Store) persist(ctx context.Context) {
	if err := Save(ctx, s.slot, s.key, s.tasks); err != nil {
		s.logger.Warn("task store write failed",
			slog.String("key", s.key),
			slog.Int("tasks", len(s.tasks)),
			slog.Any("error", err),
		)
	}
}
