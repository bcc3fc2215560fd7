package users

import (
	"context"

	"github.com/Aswath1709/task-manager-app/domain/user"
	"github.com/Aswath1709/task-manager-app/modules/docstore"
)

// Collection is the users collection. Usernames are unique and
// case-sensitive.
var Collection = docstore.Collection{
	Name:   "users",
	Unique: []string{"username"},
}

// account is the stored user document.
type account struct {
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
}

// UserRepository persists accounts in the document store.
type UserRepository struct {
	users *docstore.Typed[account]
}

func NewUserRepository(s *docstore.Store) *UserRepository {
	return &UserRepository{users: docstore.For[account](s, Collection.Name)}
}

// Create stores a new account. A taken username yields errs.ErrDuplicateKey.
func (r *UserRepository) Create(ctx context.Context, username, passwordHash string) (user.User, error) {
	rec, err := r.users.Insert(ctx, "", account{Username: username, PasswordHash: passwordHash})
	if err != nil {
		return user.User{}, err
	}
	return toUser(rec), nil
}

// FindByUsername returns the account and its password hash.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (user.User, string, error) {
	rec, err := r.users.FindUnique(ctx, "username", username)
	if err != nil {
		return user.User{}, "", err
	}
	return toUser(rec), rec.Doc.PasswordHash, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (user.User, error) {
	rec, err := r.users.Get(ctx, id)
	if err != nil {
		return user.User{}, err
	}
	return toUser(rec), nil
}

func toUser(rec docstore.Record[account]) user.User {
	return user.User{ID: rec.ID, Username: rec.Doc.Username, Revision: rec.Revision}
}
