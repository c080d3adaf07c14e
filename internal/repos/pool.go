package repos

import (
	"context"
	"sync"

	"github.com/jmoiron/sqlx"
)

// Pool opens the database once, on first use, and hands the same handle to
// every caller afterwards.
type Pool struct {
	dsn  string
	once sync.Once
	db   *sqlx.DB
	err  error
}

func NewPool(dsn string) *Pool { return &Pool{dsn: dsn} }

// DB returns the shared handle. A failed first open is remembered and
// returned to every later caller.
func (p *Pool) DB() (*sqlx.DB, error) {
	p.once.Do(func() {
		p.db, p.err = OpenDB(p.dsn)
	})
	return p.db, p.err
}

// Ping opens the handle if needed and checks that it answers.
func (p *Pool) Ping(ctx context.Context) error {
	db, err := p.DB()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

func (p *Pool) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}
