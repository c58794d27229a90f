package liberfly

import (
	"context"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Users interface {
	repository.Repository[*User]

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error)

	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)

	ListAll(ctx context.Context) ([]*User, error)
	ListAllTx(ctx context.Context, tx bun.IDB) ([]*User, error)
	GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
	_ UserDirectory                = (*userDirectory)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	return a.CreateTx(ctx, tx, user)
}

func (a *users) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareUserDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", strings.TrimSpace(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) ListAll(ctx context.Context) ([]*User, error) {
	return a.ListAllTx(ctx, a.db)
}

func (a *users) ListAllTx(ctx context.Context, tx bun.IDB) ([]*User, error) {
	records := []*User{}
	err := tx.NewSelect().
		Model(&records).
		Order("created_at ASC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	record.Email = strings.TrimSpace(record.Email)

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

// userDirectory narrows a Users repository to the read side the lookup
// endpoints consume. Unknown and malformed ids both come back as not found.
type userDirectory struct {
	users Users
}

// NewUserDirectory wraps repo for the /user lookup handlers
func NewUserDirectory(users Users) UserDirectory {
	return userDirectory{users: users}
}

func (d userDirectory) List(ctx context.Context) ([]*User, error) {
	return d.users.ListAll(ctx)
}

func (d userDirectory) GetByID(ctx context.Context, id string) (*User, error) {
	if _, err := uuid.Parse(strings.TrimSpace(id)); err != nil {
		return nil, ErrIdentityNotFound
	}

	user, err := d.users.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}

	return user, nil
}
