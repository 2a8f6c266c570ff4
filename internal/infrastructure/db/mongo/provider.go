package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/99minutos/auth-service/internal/core/ports"
)

// Provider starts one driver session per request.
type Provider struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ ports.StoreProvider = (*Provider)(nil)

func NewProvider(client *mongo.Client, db *mongo.Database) *Provider {
	return &Provider{client: client, db: db}
}

func (p *Provider) Acquire(context.Context) (ports.StoreSession, error) {
	sess, err := p.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	repo := NewUserRepository(p.db)
	repo.sess = sess
	return &session{sess: sess, users: repo}, nil
}

func (p *Provider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, readpref.Primary())
}

type session struct {
	sess  mongo.Session
	users *UserRepository
}

func (s *session) Users() ports.UserRepository { return s.users }

func (s *session) Release() { s.sess.EndSession(context.Background()) }
