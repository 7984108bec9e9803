// Package notes implements the note collection: creation with fact
// extraction and tag synthesis, editing, soft deletion, import and export.
//
// Every mutation is a read-modify-write of the whole collection. Nothing is
// considered committed until the store acknowledges the write.
package notes

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/tally/pkg/core"
	"github.com/aretw0/tally/pkg/facts"
	"github.com/aretw0/tally/pkg/tags"
)

// Service handles the business logic for notes.
type Service struct {
	repo      *Repository
	extractor *facts.Extractor
	clock     core.Clock
	logger    *slog.Logger

	mu           sync.Mutex
	mutations    int
	lastMutation *time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the clock used for creation timestamps.
func WithClock(c core.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithExtractor sets the fact extractor. It should share the service clock.
func WithExtractor(e *facts.Extractor) Option {
	return func(s *Service) {
		if e != nil {
			s.extractor = e
		}
	}
}

// NewService creates a Service storing notes in store.
func NewService(store core.Store, opts ...Option) *Service {
	s := &Service{
		repo:   NewRepository(store),
		clock:  core.SystemClock,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.extractor == nil {
		s.extractor = facts.NewExtractor(facts.WithClock(s.clock))
	}
	return s
}

// Store returns the store the service writes to.
func (s *Service) Store() core.Store {
	return s.repo.Store()
}

// Extractor returns the fact extractor used by the service.
func (s *Service) Extractor() *facts.Extractor {
	return s.extractor
}

// Update runs fn on the loaded collection and saves the result.
// If fn fails nothing is written.
func (s *Service) Update(ctx context.Context, fn func([]core.Note) ([]core.Note, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	all, err = fn(all)
	if err != nil {
		return err
	}
	if err := s.repo.Save(ctx, all); err != nil {
		return err
	}
	now := s.clock.Now()
	s.mutations++
	s.lastMutation = &now
	return nil
}

// All returns every note, deleted ones included, in stored order.
func (s *Service) All(ctx context.Context) ([]core.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Load(ctx)
}

// Create adds a note. Facts are extracted from content and tags synthesized
// from the vocabulary in use plus hashtags and capitalised words.
func (s *Service) Create(ctx context.Context, content string) (core.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return core.Note{}, core.ErrEmptyContent
	}

	var created core.Note
	err := s.Update(ctx, func(all []core.Note) ([]core.Note, error) {
		created = core.Note{
			ID:        NextID(all),
			Content:   content,
			Tags:      tags.Merge(tags.Synthesize(content, tags.Vocabulary(all)), tags.Auto(content)),
			CreatedAt: s.clock.Now(),
			Fact:      s.extractor.Extract(content),
		}
		return append(all, created), nil
	})
	if err != nil {
		return core.Note{}, err
	}
	s.logger.Debug("note created", "id", created.ID, "tags", created.Tags)
	return created.Clone(), nil
}

// UpdateContent replaces the content of a note and re-derives its whole fact
// record. Synthesized tags are added to the tags already present.
func (s *Service) UpdateContent(ctx context.Context, id int, content string) (core.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return core.Note{}, core.ErrEmptyContent
	}

	var updated core.Note
	err := s.Update(ctx, func(all []core.Note) ([]core.Note, error) {
		i := indexOf(all, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %d", core.ErrNotFound, id)
		}
		vocab := tags.Vocabulary(all)
		n := &all[i]
		n.Content = content
		n.Fact = s.extractor.Extract(content)
		n.Tags = tags.Merge(n.Tags, tags.Synthesize(content, vocab))
		updated = n.Clone()
		return all, nil
	})
	if err != nil {
		return core.Note{}, err
	}
	s.logger.Debug("note updated", "id", id)
	return updated, nil
}

// SetID changes the id of a note. The new id must be positive and unused by
// any note, deleted ones included. Series that originate at the old id follow.
func (s *Service) SetID(ctx context.Context, oldID, newID int) error {
	if newID < 1 {
		return core.ErrInvalidID
	}
	return s.Update(ctx, func(all []core.Note) ([]core.Note, error) {
		i := indexOf(all, oldID)
		if i < 0 {
			return nil, fmt.Errorf("%w: %d", core.ErrNotFound, oldID)
		}
		if oldID == newID {
			return all, nil
		}
		if indexOf(all, newID) >= 0 {
			return nil, fmt.Errorf("%w: %d", core.ErrDuplicateID, newID)
		}
		all[i].ID = newID
		for j := range all {
			if all[j].Origin == oldID {
				all[j].Origin = newID
			}
		}
		return all, nil
	})
}

// AddTag adds a manual tag to a note.
func (s *Service) AddTag(ctx context.Context, id int, tag string) (core.Note, error) {
	tag, ok := tags.Normalize(tag)
	if !ok {
		return core.Note{}, fmt.Errorf("tag cannot be empty")
	}
	return s.modify(ctx, id, func(n *core.Note) {
		n.Tags = tags.Merge(n.Tags, []string{tag})
	})
}

// RemoveTag removes a tag from a note. Removing an absent tag is not an error.
func (s *Service) RemoveTag(ctx context.Context, id int, tag string) (core.Note, error) {
	tag, _ = tags.Normalize(tag)
	return s.modify(ctx, id, func(n *core.Note) {
		n.Tags = slices.DeleteFunc(n.Tags, func(t string) bool { return t == tag })
	})
}

// SoftDelete marks notes as deleted. They stay in the store.
func (s *Service) SoftDelete(ctx context.Context, ids ...int) error {
	return s.setDeleted(ctx, ids, true)
}

// Recover clears the deleted flag of notes.
func (s *Service) Recover(ctx context.Context, ids ...int) error {
	return s.setDeleted(ctx, ids, false)
}

// Purge removes notes permanently.
func (s *Service) Purge(ctx context.Context, ids ...int) error {
	return s.Update(ctx, func(all []core.Note) ([]core.Note, error) {
		for _, id := range ids {
			if indexOf(all, id) < 0 {
				return nil, fmt.Errorf("%w: %d", core.ErrNotFound, id)
			}
		}
		return slices.DeleteFunc(all, func(n core.Note) bool { return slices.Contains(ids, n.ID) }), nil
	})
}

// Get returns the note with the given id.
func (s *Service) Get(ctx context.Context, id int) (core.Note, error) {
	all, err := s.All(ctx)
	if err != nil {
		return core.Note{}, err
	}
	i := indexOf(all, id)
	if i < 0 {
		return core.Note{}, fmt.Errorf("%w: %d", core.ErrNotFound, id)
	}
	return all[i], nil
}

// List returns the notes matching f, sorted as f requests.
func (s *Service) List(ctx context.Context, f Filter) ([]core.Note, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return f.Apply(all), nil
}

// TagCount is the number of non-deleted notes carrying a tag.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TagCounts counts tag usage over non-deleted notes, most used first.
func (s *Service) TagCounts(ctx context.Context) ([]TagCount, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, t := range tags.Vocabulary(all) {
		counts[t] = 0
	}
	for _, n := range all {
		if n.Deleted {
			continue
		}
		for _, t := range n.Tags {
			counts[t]++
		}
	}
	out := make([]TagCount, 0, len(counts))
	for t, c := range counts {
		out = append(out, TagCount{Tag: t, Count: c})
	}
	slices.SortFunc(out, func(a, b TagCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Tag, b.Tag)
	})
	return out, nil
}

// Renumber assigns ids 1..n to the notes matching f, in the order f sorts
// them, and n+1.. to the remaining notes in id order.
func (s *Service) Renumber(ctx context.Context, f Filter) error {
	return s.Update(ctx, func(all []core.Note) ([]core.Note, error) {
		visible := f.Apply(all)
		seen := make(map[int]bool, len(visible))
		order := make([]int, 0, len(all))
		for _, n := range visible {
			seen[n.ID] = true
			order = append(order, n.ID)
		}
		rest := make([]int, 0, len(all)-len(visible))
		for _, n := range all {
			if !seen[n.ID] {
				rest = append(rest, n.ID)
			}
		}
		slices.Sort(rest)
		order = append(order, rest...)

		mapping := make(map[int]int, len(order))
		for i, id := range order {
			mapping[id] = i + 1
		}
		for i := range all {
			all[i].ID = mapping[all[i].ID]
			if all[i].Origin != 0 {
				if to, ok := mapping[all[i].Origin]; ok {
					all[i].Origin = to
				}
			}
		}
		s.logger.Debug("notes renumbered", "count", len(all))
		return all, nil
	})
}

func (s *Service) modify(ctx context.Context, id int, fn func(*core.Note)) (core.Note, error) {
	var out core.Note
	err := s.Update(ctx, func(all []core.Note) ([]core.Note, error) {
		i := indexOf(all, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %d", core.ErrNotFound, id)
		}
		fn(&all[i])
		out = all[i].Clone()
		return all, nil
	})
	return out, err
}

func (s *Service) setDeleted(ctx context.Context, ids []int, deleted bool) error {
	return s.Update(ctx, func(all []core.Note) ([]core.Note, error) {
		for _, id := range ids {
			i := indexOf(all, id)
			if i < 0 {
				return nil, fmt.Errorf("%w: %d", core.ErrNotFound, id)
			}
			all[i].Deleted = deleted
		}
		return all, nil
	})
}

// NextID returns one more than the highest id in notes.
func NextID(notes []core.Note) int {
	highest := 0
	for _, n := range notes {
		if n.ID > highest {
			highest = n.ID
		}
	}
	return highest + 1
}

func indexOf(notes []core.Note, id int) int {
	return slices.IndexFunc(notes, func(n core.Note) bool { return n.ID == id })
}
