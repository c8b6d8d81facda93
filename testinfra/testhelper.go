package testinfra

import (
	"context"

	"cowork/session"

	"github.com/fundwit/go-commons/types"
)

// BuildSecSession build an authenticated session for service level tests
func BuildSecSession(uid types.ID, name string) *session.Session {
	return &session.Session{
		Token:    "test-token-" + uid.String(),
		Identity: session.Identity{ID: uid, Name: name, Nickname: name},
		Context:  context.Background(),
	}
}
