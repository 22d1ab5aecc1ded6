package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
)

type fakeES struct {
	mu       sync.Mutex
	requests []string
	bodies   []string
}

func (f *fakeES) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.bodies = append(f.bodies, string(body))
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/":
		_, _ = io.WriteString(w, `{"version":{"number":"9.0.0"},"tagline":"You Know, for Search"}`)
	case strings.HasSuffix(r.URL.Path, "/_search"):
		_, _ = io.WriteString(w, `{"hits":{"total":{"value":1},"hits":[{"_source":{"id":3,"name":"Lamp","price":9.5,"description":"desk lamp"}}]}}`)
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"result":"not_found"}`)
	default:
		_, _ = io.WriteString(w, `{"result":"created"}`)
	}
}

func newTestIndex(t *testing.T) (*ESIndex, *fakeES) {
	t.Helper()
	f := &fakeES{}
	srv := httptest.NewServer(http.HandlerFunc(f.handler))
	t.Cleanup(srv.Close)

	idx, err := NewESIndex(Config{URL: srv.URL, Index: "products"})
	require.NoError(t, err)
	return idx, f
}

func TestESIndex_IndexProduct(t *testing.T) {
	idx, f := newTestIndex(t)
	desc := "desk lamp"

	require.NoError(t, idx.IndexProduct(context.Background(), models.Product{ID: 3, Name: "Lamp", Price: 9.5, Description: &desc}))

	f.mu.Lock()
	defer f.mu.Unlock()
	last := len(f.requests) - 1
	assert.Equal(t, "PUT /products/_doc/3", f.requests[last])

	var doc Doc
	require.NoError(t, json.Unmarshal([]byte(f.bodies[last]), &doc))
	assert.Equal(t, "Lamp", doc.Name)
	assert.Equal(t, 9.5, doc.Price)
}

func TestESIndex_DeleteMissingIsNotAnError(t *testing.T) {
	idx, _ := newTestIndex(t)
	require.NoError(t, idx.DeleteProduct(context.Background(), 99))
}

func TestESIndex_Search(t *testing.T) {
	idx, f := newTestIndex(t)

	docs, err := idx.Search(context.Background(), "lamp", 20)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, uint(3), docs[0].ID)
	assert.Equal(t, "desk lamp", *docs[0].Description)

	f.mu.Lock()
	defer f.mu.Unlock()
	last := len(f.bodies) - 1
	assert.Contains(t, f.bodies[last], `"multi_match"`)
	assert.Contains(t, f.bodies[last], `"lamp"`)
}
