package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/99minutos/auth-service/internal/core/ports"
)

// Provider hands out one pooled connection per request.
type Provider struct {
	db *sql.DB
}

var _ ports.StoreProvider = (*Provider)(nil)

func NewProvider(db *sql.DB) *Provider {
	return &Provider{db: db}
}

// Acquire reserves a connection from the pool for the caller's exclusive use.
func (p *Provider) Acquire(ctx context.Context) (ports.StoreSession, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &session{conn: conn, users: NewUserRepository(conn)}, nil
}

func (p *Provider) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

type session struct {
	conn  *sql.Conn
	users *UserRepository
}

func (s *session) Users() ports.UserRepository { return s.users }

// Release returns the connection to the pool.
func (s *session) Release() { _ = s.conn.Close() }
