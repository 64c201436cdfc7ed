package server

import (
	"fmt"
	"net/http"
	"testing"

	"capstonehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapstoneHandlers_PublicCatalog(t *testing.T) {
	e := newTestEnv(t)

	owner := e.user(models.RoleAlumni)
	capstone := e.capstone(owner)

	t.Run("anonymous list works and hides proposal links", func(t *testing.T) {
		resp := e.request(http.MethodGet, "/api/capstones/", nil, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		items := body["capstones"].([]any)
		require.Len(t, items, 1)
		entry := items[0].(map[string]any)
		assert.Equal(t, capstone.Title, entry["title"])
		assert.Nil(t, entry["proposal_url"])
	})

	t.Run("owner sees the proposal link on detail", func(t *testing.T) {
		resp := e.request(http.MethodGet, fmt.Sprintf("/api/capstones/%d", capstone.ID), owner, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, capstone.ProposalURL, body["proposal_url"])
	})

	t.Run("unknown capstone is 404", func(t *testing.T) {
		resp := e.request(http.MethodGet, "/api/capstones/99999", nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("stats endpoint is public", func(t *testing.T) {
		resp := e.request(http.MethodGet, "/api/capstones/stats", nil, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, float64(1), body["total"])
	})
}

func TestCapstoneHandlers_CRUD(t *testing.T) {
	e := newTestEnv(t)

	alumni := e.user(models.RoleAlumni)
	student := e.user(models.RoleMahasiswa)

	t.Run("create requires alumni or admin", func(t *testing.T) {
		resp := e.request(http.MethodPost, "/api/capstones/", student, map[string]any{
			"title": "Judul Mahasiswa",
		})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("create requires authentication", func(t *testing.T) {
		resp := e.request(http.MethodPost, "/api/capstones/", nil, map[string]any{
			"title": "Tanpa Login",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})

	var capstoneID uint

	t.Run("alumni creates a proposal", func(t *testing.T) {
		resp := e.request(http.MethodPost, "/api/capstones/", alumni, map[string]any{
			"title":    "Dashboard Energi Kampus",
			"category": "IoT",
			"abstract": "Pemantauan konsumsi energi gedung secara real time.",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, string(models.CapstoneStatusAvailable), body["status"])
		capstoneID = uint(body["id"].(float64))
	})

	t.Run("only the owner can update", func(t *testing.T) {
		other := e.user(models.RoleAlumni)
		resp := e.request(http.MethodPut, fmt.Sprintf("/api/capstones/%d", capstoneID), other, map[string]any{
			"title": "Dibajak",
		})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("owner updates the proposal", func(t *testing.T) {
		resp := e.request(http.MethodPut, fmt.Sprintf("/api/capstones/%d", capstoneID), alumni, map[string]any{
			"title": "Dashboard Energi Kampus v2",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Dashboard Energi Kampus v2", body["title"])
	})

	t.Run("owner deletes the proposal", func(t *testing.T) {
		resp := e.request(http.MethodDelete, fmt.Sprintf("/api/capstones/%d", capstoneID), alumni, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()

		resp = e.request(http.MethodGet, fmt.Sprintf("/api/capstones/%d", capstoneID), nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		_ = resp.Body.Close()
	})
}
