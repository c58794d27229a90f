package liberfly

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type AccessTokens interface {
	repository.Repository[*AccessToken]

	Create(ctx context.Context, record *AccessToken, criteria ...repository.InsertCriteria) (*AccessToken, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *AccessToken, criteria ...repository.InsertCriteria) (*AccessToken, error)

	GetByValue(ctx context.Context, token string) (*AccessToken, error)
	GetByValueTx(ctx context.Context, tx bun.IDB, token string) (*AccessToken, error)

	Revoke(ctx context.Context, id uuid.UUID) error
	RevokeTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error

	PurgeExpired(ctx context.Context) (int64, error)
	PurgeExpiredTx(ctx context.Context, tx bun.IDB) (int64, error)
}

type accessTokens struct {
	repository.Repository[*AccessToken]
	db *bun.DB
}

var (
	_ AccessTokens                        = (*accessTokens)(nil)
	_ repository.Repository[*AccessToken] = (*accessTokens)(nil)
)

func NewAccessTokensRepository(db *bun.DB) AccessTokens {
	repo := repository.NewRepository[*AccessToken](db, repository.ModelHandlers[*AccessToken]{
		NewRecord: func() *AccessToken { return &AccessToken{} },
		GetID: func(t *AccessToken) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *AccessToken, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
		GetIdentifier: func() string {
			return "token"
		},
	})

	return &accessTokens{
		Repository: repo,
		db:         db,
	}
}

func (a *accessTokens) Create(ctx context.Context, record *AccessToken, criteria ...repository.InsertCriteria) (*AccessToken, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *accessTokens) CreateTx(ctx context.Context, tx bun.IDB, record *AccessToken, criteria ...repository.InsertCriteria) (*AccessToken, error) {
	prepareTokenDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *accessTokens) GetByValue(ctx context.Context, token string) (*AccessToken, error) {
	return a.GetByValueTx(ctx, a.db, token)
}

func (a *accessTokens) GetByValueTx(ctx context.Context, tx bun.IDB, token string) (*AccessToken, error) {
	record := &AccessToken{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.token = ?", strings.TrimSpace(token)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	return record, nil
}

func (a *accessTokens) Revoke(ctx context.Context, id uuid.UUID) error {
	return a.RevokeTx(ctx, a.db, id)
}

func (a *accessTokens) RevokeTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	res, err := tx.NewDelete().
		Model((*AccessToken)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrTokenNotFound
	}

	return nil
}

func (a *accessTokens) PurgeExpired(ctx context.Context) (int64, error) {
	return a.PurgeExpiredTx(ctx, a.db)
}

func (a *accessTokens) PurgeExpiredTx(ctx context.Context, tx bun.IDB) (int64, error) {
	res, err := tx.NewDelete().
		Model((*AccessToken)(nil)).
		Where("?TableAlias.expires_at IS NOT NULL").
		Where("?TableAlias.expires_at <= ?", time.Now()).
		Exec(ctx)

	if err != nil {
		return 0, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	return n, nil
}

func prepareTokenDefaults(record *AccessToken) {
	if record == nil {
		return
	}

	if record.Name == "" {
		record.Name = "API Token"
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
