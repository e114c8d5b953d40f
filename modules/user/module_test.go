package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserModule_Services(t *testing.T) {
	m := NewModule()
	require.NoError(t, m.Start(context.Background()))

	resp, err := m.getUser(context.Background(), GetUserRequest{UserID: "user-2"}, nil)
	require.NoError(t, err)
	require.True(t, resp.Found)
	assert.Equal(t, "Bob Smith", resp.User.Name)

	resp, err = m.getUser(context.Background(), GetUserRequest{UserID: "user-9"}, nil)
	require.NoError(t, err)
	assert.False(t, resp.Found)
	assert.Nil(t, resp.User)

	list, err := m.listUsers(context.Background(), ListUsersRequest{}, nil)
	require.NoError(t, err)
	require.Len(t, list.Users, 3)
	assert.Equal(t, "user-1", list.Users[0].ID)
	assert.Equal(t, "user-3", list.Users[2].ID)
}

func TestUserRepository_SeedOverwrites(t *testing.T) {
	repo := NewUserRepository()
	repo.Seed(DemoUsers)
	repo.Seed(DemoUsers[:1])

	assert.Len(t, repo.FindAll(), 3)

	u, found := repo.FindByID("user-1")
	assert.True(t, found)
	assert.Equal(t, "alice@example.com", u.Email)
}
