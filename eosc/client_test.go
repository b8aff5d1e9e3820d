package eosc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bluecloud-project/eoscsync/mapping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient wires a Client against a portal stub plus a token stub that
// hands out sequentially numbered access tokens.
func newTestClient(t *testing.T, portal http.HandlerFunc) (*Client, *int) {
	t.Helper()

	refreshes := 0
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		refreshes++
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": fmt.Sprintf("tok-%d", refreshes),
		})
	}))
	t.Cleanup(tokenSrv.Close)

	portalSrv := httptest.NewServer(portal)
	t.Cleanup(portalSrv.Close)

	c := NewClient("sync-client", "refresh-xyz",
		WithPortalURL(portalSrv.URL),
		WithTokenURL(tokenSrv.URL))
	return c, &refreshes
}

func TestExistsByID(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/resource/known-id":
			w.Write([]byte(`{"id":"known-id"}`))
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	})

	ok, err := c.ExistsByID(context.Background(), "known-id")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.ExistsByID(context.Background(), "unknown-id")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRetryOnceOn401(t *testing.T) {
	calls := 0
	c, refreshes := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Header.Get("Authorization") == "Bearer tok-1" {
			http.Error(w, "expired", http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"id":"known-id"}`))
	})

	ok, err := c.ExistsByID(context.Background(), "known-id")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, calls, "expected exactly one replay")
	assert.Equal(t, 2, *refreshes, "initial token plus one refresh")
}

func TestExistsByName(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/resource/all", r.URL.Path)
		assert.Equal(t, "Ocean Patterns", r.URL.Query().Get("query"))
		w.Write([]byte(`{"total":2,"results":[
			{"id":"other","name":"Ocean Patterns","resourceOrganisation":"someone-else"},
			{"id":"bc.oceanpatterns","name":"Ocean Patterns","resourceOrganisation":"blue-cloud"}
		]}`))
	})

	id, found, err := c.ExistsByName(context.Background(), "Ocean Patterns", "blue-cloud")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "bc.oceanpatterns", id)

	_, found, err = c.ExistsByName(context.Background(), "Ocean Patterns", "nobody")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCreate(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/resource", r.URL.Path)

		var rec mapping.TargetRecord
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rec))
		assert.Equal(t, "Ocean Patterns", rec.Name)
		assert.Equal(t, "eosc", rec.Catalogue)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"bc.oceanpatterns"}`))
	})
	WithCatalogue("eosc")(c)

	rec := &mapping.TargetRecord{Name: "Ocean Patterns"}
	id, err := c.Create(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "bc.oceanpatterns", id)
}

func TestCreateRejected(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"mandatory field missing"}`, http.StatusBadRequest)
	})

	_, err := c.Create(context.Background(), &mapping.TargetRecord{Name: "Bad"})
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusBadRequest, remoteErr.StatusCode)
}

func TestUpdateRequiresID(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	err := c.Update(context.Background(), &mapping.TargetRecord{Name: "No ID"})
	require.Error(t, err)
}

func TestValidateRemote(t *testing.T) {
	t.Run("pass", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/resource/validate", r.URL.Path)

			var rec mapping.TargetRecord
			require.NoError(t, json.NewDecoder(r.Body).Decode(&rec))
			assert.Equal(t, dummyValidationID, rec.ID)

			w.WriteHeader(http.StatusOK)
		})

		complaints, err := c.ValidateRemote(context.Background(), &mapping.TargetRecord{Name: "Ocean Patterns"})
		require.NoError(t, err)
		assert.Empty(t, complaints)
	})

	t.Run("conflict returns complaints", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"Field 'tagline' is mandatory."}`, http.StatusConflict)
		})

		complaints, err := c.ValidateRemote(context.Background(), &mapping.TargetRecord{Name: "Ocean Patterns"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Field 'tagline' is mandatory."}, complaints)
	})

	t.Run("does not mutate the record", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		rec := &mapping.TargetRecord{Name: "Ocean Patterns"}
		_, err := c.ValidateRemote(context.Background(), rec)
		require.NoError(t, err)
		assert.Empty(t, rec.ID)
	})
}

func TestFetchVocabulary(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vocabulary/byType/ACCESS_MODE", r.URL.Path)
		w.Write([]byte(`[
			{"id":"access_mode-free","name":"Free"},
			{"id":"access_mode-paid","name":"Paid"}
		]`))
	})

	v, err := c.FetchVocabulary(context.Background(), "ACCESS_MODE")
	require.NoError(t, err)
	assert.Equal(t, 2, v.Len())

	id, err := v.Lookup("free")
	require.NoError(t, err)
	assert.Equal(t, "access_mode-free", id)
}

func TestFetchHierarchy(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/vocabulary/byType/SCIENTIFIC_DOMAIN":
			w.Write([]byte(`[{"id":"scientific_domain-natural_sciences","name":"Natural Sciences"}]`))
		case "/vocabulary/byType/SCIENTIFIC_SUBDOMAIN":
			w.Write([]byte(`[
				{"id":"scientific_subdomain-natural_sciences-earth","name":"Earth & Related Environmental Sciences","parentId":"scientific_domain-natural_sciences"},
				{"id":"scientific_subdomain-orphan","name":"Orphan","parentId":"scientific_domain-gone"}
			]`))
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	})

	h, err := c.FetchHierarchy(context.Background(), "SCIENTIFIC_DOMAIN", "SCIENTIFIC_SUBDOMAIN")
	require.NoError(t, err)

	// The orphan child must have been skipped.
	assert.Equal(t, 1, h.Children.Len())

	id, err := h.Children.Lookup("Natural Sciences.Earth & Related Environmental Sciences")
	require.NoError(t, err)
	assert.Equal(t, "scientific_subdomain-natural_sciences-earth", id)

	parent, err := h.Parent(id)
	require.NoError(t, err)
	assert.Equal(t, "scientific_domain-natural_sciences", parent)
}

func TestFetchProviders(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/provider/all", r.URL.Path)
		w.Write([]byte(`{"results":[{"id":"blue-cloud"},{"id":"d4science"}]}`))
	})

	providers, err := c.FetchProviders(context.Background())
	require.NoError(t, err)
	assert.True(t, providers.Contains("blue-cloud"))
	assert.True(t, providers.Contains("d4science"))
	assert.False(t, providers.Contains("unknown"))
}
