package user

import (
	"context"
	"errors"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type User struct {
	Username string
	Hash     []byte
}

type Store interface {
	Create(ctx context.Context, username, password string) error
	Verify(ctx context.Context, username, password string) (User, error)
	Ping(ctx context.Context) error
}
