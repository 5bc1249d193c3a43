package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"notebook-markdown-be/internal/entity"
	"notebook-markdown-be/internal/repository/contract"
	"notebook-markdown-be/internal/repository/specification"
	"notebook-markdown-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// fakeNotebookRepository understands the specifications the services use.
type fakeNotebookRepository struct {
	mu        sync.Mutex
	notebooks map[uuid.UUID]*entity.Notebook
	err       error
}

func newFakeNotebookRepository() *fakeNotebookRepository {
	return &fakeNotebookRepository{notebooks: make(map[uuid.UUID]*entity.Notebook)}
}

func (r *fakeNotebookRepository) Create(ctx context.Context, notebook *entity.Notebook) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if notebook.Id == uuid.Nil {
		notebook.Id = uuid.New()
	}
	stored := *notebook
	r.notebooks[notebook.Id] = &stored
	return nil
}

func (r *fakeNotebookRepository) Update(ctx context.Context, notebook *entity.Notebook) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	notebook.UpdatedAt = &now
	stored := *notebook
	r.notebooks[notebook.Id] = &stored
	return nil
}

func (r *fakeNotebookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.notebooks, id)
	return nil
}

func matches(nb *entity.Notebook, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if nb.Id != s.ID {
				return false
			}
		case specification.UserOwnedBy:
			if nb.UserId != s.UserID {
				return false
			}
		case specification.ByTitle:
			if !strings.Contains(strings.ToLower(nb.Title), strings.ToLower(s.Query)) {
				return false
			}
		}
	}
	return true
}

func (r *fakeNotebookRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Notebook, error) {
	found, err := r.FindAll(ctx, specs...)
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return found[0], nil
}

func (r *fakeNotebookRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Notebook, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var found []*entity.Notebook
	for _, nb := range r.notebooks {
		if matches(nb, specs) {
			copied := *nb
			found = append(found, &copied)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Title < found[j].Title })

	for _, spec := range specs {
		if p, ok := spec.(specification.Pagination); ok {
			if p.Offset >= len(found) {
				return []*entity.Notebook{}, nil
			}
			found = found[p.Offset:]
			if p.Limit < len(found) {
				found = found[:p.Limit]
			}
		}
	}
	return found, nil
}

func (r *fakeNotebookRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	found, err := r.FindAll(ctx, specs...)
	return int64(len(found)), err
}

type fakeUnitOfWork struct {
	repo *fakeNotebookRepository
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) NotebookRepository() contract.NotebookRepository {
	return u.repo
}

type fakeFactory struct {
	repo *fakeNotebookRepository
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{repo: f.repo}
}

type fakePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
}

func (p *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return p.err
}

type fakeEvents struct {
	published []string
}

func (e *fakeEvents) PublishNotebookImported(ctx context.Context, notebookId, userId uuid.UUID, title string, cellCount int) {
	e.published = append(e.published, "imported")
}

func (e *fakeEvents) PublishNotebookUpdated(ctx context.Context, notebookId, userId uuid.UUID, cellCount int) {
	e.published = append(e.published, "updated")
}

func (e *fakeEvents) PublishNotebookExported(ctx context.Context, notebookId, userId uuid.UUID, cached bool) {
	if cached {
		e.published = append(e.published, "exported:cached")
		return
	}
	e.published = append(e.published, "exported")
}

func (e *fakeEvents) PublishNotebookDeleted(ctx context.Context, notebookId, userId uuid.UUID) {
	e.published = append(e.published, "deleted")
}

// spyCache delegates to inner and records evictions.
type spyCache struct {
	inner   contract.RenderCache
	deleted []uuid.UUID
}

func (c *spyCache) Get(ctx context.Context, id uuid.UUID) (string, bool, error) {
	return c.inner.Get(ctx, id)
}

func (c *spyCache) Set(ctx context.Context, id uuid.UUID, markdown string, ttl time.Duration) error {
	return c.inner.Set(ctx, id, markdown, ttl)
}

func (c *spyCache) Delete(ctx context.Context, id uuid.UUID) error {
	c.deleted = append(c.deleted, id)
	return c.inner.Delete(ctx, id)
}

type failingCache struct{}

func (failingCache) Get(ctx context.Context, id uuid.UUID) (string, bool, error) {
	return "", false, errors.New("cache down")
}

func (failingCache) Set(ctx context.Context, id uuid.UUID, markdown string, ttl time.Duration) error {
	return errors.New("cache down")
}

func (failingCache) Delete(ctx context.Context, id uuid.UUID) error {
	return errors.New("cache down")
}
