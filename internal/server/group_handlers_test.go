package server

import (
	"fmt"
	"net/http"
	"testing"

	"capstonehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupHandlers(t *testing.T) {
	e := newTestEnv(t)

	leader := e.user(models.RoleMahasiswa)
	member := e.user(models.RoleMahasiswa)

	var groupID uint

	t.Run("leader creates a group with one member", func(t *testing.T) {
		resp := e.request(http.MethodPost, "/api/groups/", leader, map[string]any{
			"name":       "Kelompok Capstone A",
			"member_ids": []uint{member.ID},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Kelompok Capstone A", body["name"])
		groupID = uint(body["id"].(float64))
	})

	t.Run("member finds the group via /me", func(t *testing.T) {
		resp := e.request(http.MethodGet, "/api/groups/me", member, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, float64(groupID), body["id"])
	})

	t.Run("outsider has no group", func(t *testing.T) {
		outsider := e.user(models.RoleMahasiswa)
		resp := e.request(http.MethodGet, "/api/groups/me", outsider, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("duplicate group name conflicts", func(t *testing.T) {
		other := e.user(models.RoleMahasiswa)
		resp := e.request(http.MethodPost, "/api/groups/", other, map[string]any{
			"name": "Kelompok Capstone A",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("member cannot rename the group", func(t *testing.T) {
		resp := e.request(http.MethodPut, fmt.Sprintf("/api/groups/%d", groupID), member, map[string]any{
			"name": "Nama Curian",
		})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("leader renames the group", func(t *testing.T) {
		resp := e.request(http.MethodPut, fmt.Sprintf("/api/groups/%d", groupID), leader, map[string]any{
			"name": "Kelompok Capstone B",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Kelompok Capstone B", body["name"])
	})

	t.Run("leader disbands the group", func(t *testing.T) {
		resp := e.request(http.MethodDelete, fmt.Sprintf("/api/groups/%d", groupID), leader, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()

		resp = e.request(http.MethodGet, fmt.Sprintf("/api/groups/%d", groupID), leader, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		_ = resp.Body.Close()
	})
}
