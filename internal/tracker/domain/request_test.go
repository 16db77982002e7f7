package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/redhill/reqtrack/internal/tracker/domain"
)

func TestRequestDecode(t *testing.T) {
	t.Run("ticket arrives as a string", func(t *testing.T) {
		var r domain.Request
		err := json.Unmarshal([]byte(`{"_id":"r1","title":"VPN","ticket":"ENG-104"}`), &r)
		require.NoError(t, err)
		require.Equal(t, "ENG-104", r.Ticket)
	})

	t.Run("ticket arrives as a number", func(t *testing.T) {
		var r domain.Request
		err := json.Unmarshal([]byte(`{"_id":"r1","title":"VPN","ticket":104}`), &r)
		require.NoError(t, err)
		require.Equal(t, "104", r.Ticket)
	})

	t.Run("ticket may be absent or null", func(t *testing.T) {
		for _, body := range []string{
			`{"_id":"r1","title":"VPN"}`,
			`{"_id":"r1","title":"VPN","ticket":null}`,
		} {
			var r domain.Request
			require.NoError(t, json.Unmarshal([]byte(body), &r))
			require.Empty(t, r.Ticket)
		}
	})
}

func TestSortRequests(t *testing.T) {
	reqs := []domain.Request{
		{ID: "done-new", Completed: true, CreatedAt: "2024-06-01T00:00:00.000Z"},
		{ID: "open-old", Completed: false, CreatedAt: "2024-01-01T00:00:00.000Z"},
		{ID: "done-old", Completed: true, CreatedAt: "2024-02-01T00:00:00.000Z"},
		{ID: "open-new", Completed: false, CreatedAt: "2024-05-01T00:00:00.000Z"},
	}

	domain.SortRequests(reqs)

	order := make([]string, len(reqs))
	for i, r := range reqs {
		order[i] = r.ID
	}
	require.Equal(t, []string{"open-new", "open-old", "done-new", "done-old"}, order)
}

func TestCreated(t *testing.T) {
	require.True(t, domain.Request{}.Created().IsZero())
	require.True(t, domain.Request{CreatedAt: "yesterday"}.Created().IsZero())
	require.False(t, domain.Request{CreatedAt: "2024-05-01T10:30:00.000Z"}.Created().IsZero())
}

func TestParseRoles(t *testing.T) {
	roles := domain.ParseRoles([]string{"Sales", "Wizard", "Admin"})
	require.Equal(t, []domain.Role{domain.RoleSales, domain.RoleAdmin}, roles)
}

func TestNewIdentity(t *testing.T) {
	t.Run("empty identity defaults to sales status with no roles", func(t *testing.T) {
		id := domain.EmptyIdentity()
		require.Equal(t, string(domain.RoleSales), id.Status)
		require.Empty(t, id.Roles)
		require.False(t, id.HasAnyRole(domain.AllRoles...))
	})

	t.Run("tie break prefers admin over engineer", func(t *testing.T) {
		id := domain.NewIdentity(1, "ada", []domain.Role{domain.RoleEngineer, domain.RoleAdmin})
		require.Equal(t, "Admin", id.Status)
		require.True(t, id.IsAdmin)
		require.True(t, id.IsEngineer)
	})
}
