package main

import (
	"context"
	"errors"
	"log"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"bookshare/internal/auth"
	"bookshare/internal/book"
	"bookshare/internal/user"
)

// Accounts creates members or finds ones that already exist.
type Accounts interface {
	Register(ctx context.Context, cmd auth.RegisterCommand) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

// Books lists a book for a member.
type Books interface {
	AddByISBN(ctx context.Context, ownerID string, cmd book.AddCommand) (book.Book, error)
}

type report struct {
	Members  int
	Existing int
	Books    int64
	Invalid  int
	Failed   int64
	Clashes  int
}

type seeder struct {
	accounts Accounts
	books    Books
	workers  int
}

func (s *seeder) run(ctx context.Context, f fixture) (report, error) {
	var rep report
	for _, m := range f.Members {
		owner, existed, err := s.account(ctx, m)
		if errors.Is(err, user.ErrUsernameTaken) {
			rep.Clashes++
			log.Printf("seed: skipping member, username taken: member=%s username=%s", m.Email, m.Username)
			continue
		}
		if err != nil {
			return rep, err
		}
		rep.Members++
		if existed {
			rep.Existing++
		}

		cmds, skipped := m.listable()
		for _, raw := range skipped {
			log.Printf("seed: skipping invalid isbn: member=%s isbn=%q", m.Email, raw)
		}
		rep.Invalid += len(skipped)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(max(s.workers, 1))
		for _, cmd := range cmds {
			g.Go(func() error {
				b, err := s.books.AddByISBN(gctx, owner.ID, cmd)
				if err != nil {
					if errors.Is(err, book.ErrMetadataNotFound) || errors.Is(err, book.ErrMetadataUnavailable) {
						atomic.AddInt64(&rep.Failed, 1)
						log.Printf("seed: book not added: member=%s isbn=%s error=%v", m.Email, cmd.ISBN, err)
						return nil
					}
					return err
				}
				atomic.AddInt64(&rep.Books, 1)
				log.Printf("seed: added book: member=%s title=%q", m.Email, b.Title)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return rep, err
		}
	}
	return rep, nil
}

func (s *seeder) account(ctx context.Context, m member) (user.User, bool, error) {
	cmd := m.registerCommand()
	u, err := s.accounts.Register(ctx, cmd)
	if err == nil {
		log.Printf("seed: registered member: email=%s id=%s", u.Email, u.ID)
		return u, false, nil
	}
	if !errors.Is(err, user.ErrAlreadyExists) {
		return user.User{}, false, err
	}
	u, err = s.accounts.GetByEmail(ctx, cmd.Email)
	if err != nil {
		return user.User{}, false, err
	}
	return u, true, nil
}
