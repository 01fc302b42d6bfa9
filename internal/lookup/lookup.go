// Package lookup resolves an ISBN to book metadata through a cache in front
// of Open Library.
package lookup

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/singleflight"

	"bookshare/internal/cache"
	"bookshare/internal/isbn"
	"bookshare/internal/platform/openlibrary"
)

var (
	ErrInvalidISBN = errors.New("invalid ISBN")
	ErrNotFound    = errors.New("book not found")
	ErrUnavailable = errors.New("metadata service unavailable")
)

const keyPrefix = "lookup:isbn:"

// fetchTimeout bounds a shared upstream fetch, which runs detached from the
// callers waiting on it.
const fetchTimeout = 30 * time.Second

// Metadata is what a successful lookup yields.
type Metadata struct {
	ISBN        string `json:"isbn"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	CoverURL    string `json:"cover_url,omitempty"`
	Description string `json:"description,omitempty"`
}

// Source is the upstream metadata provider.
type Source interface {
	LookupISBN(ctx context.Context, isbn string) (openlibrary.BookData, error)
}

type Service struct {
	source Source
	cache  cache.Client
	ttl    time.Duration
	group  singleflight.Group
}

func NewService(source Source, c cache.Client, ttl time.Duration) *Service {
	return &Service{source: source, cache: c, ttl: ttl}
}

// Lookup validates raw, then returns cached metadata or fetches it. Only
// successful lookups are cached.
func (s *Service) Lookup(ctx context.Context, raw string) (Metadata, error) {
	if !isbn.IsValid(raw) {
		recordRejected()
		return Metadata{}, ErrInvalidISBN
	}
	n := isbn.Normalize(raw)

	if md, ok := s.fromCache(ctx, n); ok {
		recordLookup(resultHit)
		return md, nil
	}

	if err := ctx.Err(); err != nil {
		return Metadata{}, errors.Wrapf(err, "lookup isbn %s", n)
	}

	// The shared fetch outlives any single caller; each caller only stops
	// waiting when its own context ends.
	ch := s.group.DoChan(n, func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		return s.fetch(fctx, n)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return Metadata{}, res.Err
		}
		return res.Val.(Metadata), nil
	case <-ctx.Done():
		return Metadata{}, errors.Wrapf(ctx.Err(), "lookup isbn %s", n)
	}
}

func (s *Service) fetch(ctx context.Context, n string) (Metadata, error) {
	start := time.Now()
	data, err := s.source.LookupISBN(ctx, n)
	observeUpstream(time.Since(start))
	if err != nil {
		switch {
		case errors.Is(err, openlibrary.ErrNotFound):
			recordLookup(resultNotFound)
			return Metadata{}, errors.Wrapf(ErrNotFound, "isbn %s", n)
		default:
			recordLookup(resultUnavailable)
			return Metadata{}, errors.WithSecondaryError(errors.Wrapf(ErrUnavailable, "isbn %s", n), err)
		}
	}
	recordLookup(resultMiss)

	md := Metadata{
		ISBN:        n,
		Title:       data.Title,
		Author:      data.Author,
		CoverURL:    data.CoverURL,
		Description: data.Description,
	}
	s.toCache(ctx, n, md)
	return md, nil
}

func (s *Service) fromCache(ctx context.Context, n string) (Metadata, bool) {
	if s.cache == nil {
		return Metadata{}, false
	}
	b, err := s.cache.Get(ctx, keyPrefix+n)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			log.Printf("lookup cache get failed: isbn=%s error=%v", n, err)
		}
		return Metadata{}, false
	}
	var md Metadata
	if err := json.Unmarshal(b, &md); err != nil {
		log.Printf("lookup cache entry corrupt: isbn=%s error=%v", n, err)
		return Metadata{}, false
	}
	return md, true
}

func (s *Service) toCache(ctx context.Context, n string, md Metadata) {
	if s.cache == nil {
		return
	}
	b, err := json.Marshal(md)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, keyPrefix+n, b, s.ttl); err != nil {
		log.Printf("lookup cache set failed: isbn=%s error=%v", n, err)
	}
}
