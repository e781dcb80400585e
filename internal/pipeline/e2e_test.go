package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/evidence-cli/internal/model"
	"github.com/sells-group/evidence-cli/internal/scrape"
	"github.com/sells-group/evidence-cli/internal/store"
	"github.com/sells-group/evidence-cli/pkg/serper"
)

// newSiteServer serves the pages a lead's search results point at.
func newSiteServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/about", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><head><title>Jane Doe</title><meta property="og:site_name" content="Doe Advisors"></head></html>`)
	})
	mux.HandleFunc("/press/launch", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><title>Launch</title>
<meta property="article:published_time" content="2021-05-01T00:00:00Z"></head></html>`)
	})
	mux.HandleFunc("/photos/1", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body>Shot on 2020/1/9</body></html>`)
	})
	mux.HandleFunc("/extra", func(w http.ResponseWriter, _ *http.Request) {
		t.Error("fetch past the evidence cap")
	})
	srv := httptest.NewTLSServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// newSearchServer answers every query with the same organic results.
func newSearchServer(t *testing.T, site string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"organic": []map[string]string{
				{"title": "About", "link": site + "/about?utm_source=serp"},
				{"title": "Launch", "link": site + "/press/launch"},
				{"title": "Photos", "url": site + "/photos/1"},
				{"title": "Extra", "link": site + "/extra"},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEndToEnd_SQLite_Idempotent(t *testing.T) {
	ctx := context.Background()

	site := newSiteServer(t)
	search := newSearchServer(t, site.URL)

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "e2e.db"), store.Tables{})
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck
	require.NoError(t, st.Migrate(ctx))

	_, err = st.ImportLeads(ctx, []model.Lead{
		{LeadID: "1", EvidenceID: "10", Name: "Jane Doe", Firm: "Doe Advisors", City: "Chicago"},
	})
	require.NoError(t, err)

	proc := NewProcessor(
		SerperSearcher{Client: serper.NewClient("test-key", serper.WithBaseURL(search.URL))},
		scrape.NewLocalFetcher(scrape.WithHTTPClient(site.Client())),
		st,
	)
	runner := NewRunner(st, proc, 2, 10)

	sum, err := runner.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), sum.Inserted)
	assert.Equal(t, int64(0), sum.Failures)

	first, err := st.ListEvidence(ctx)
	require.NoError(t, err)
	require.Len(t, first, 3)

	byURL := make(map[string]model.Evidence, len(first))
	for _, e := range first {
		byURL[e.URL] = e
	}

	about := byURL[site.URL+"/about"]
	assert.Equal(t, model.KindWebsite, about.SourceType)
	assert.Equal(t, "Official site", about.Label)
	assert.Nil(t, about.PublishedAt)

	press := byURL[site.URL+"/press/launch"]
	assert.Equal(t, model.KindPress, press.SourceType)
	require.NotNil(t, press.PublishedAt)
	assert.True(t, time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC).Equal(*press.PublishedAt))

	photos := byURL[site.URL+"/photos/1"]
	assert.Equal(t, model.KindImages, photos.SourceType)
	require.NotNil(t, photos.PublishedAt)
	assert.True(t, time.Date(2020, 1, 9, 0, 0, 0, 0, time.UTC).Equal(*photos.PublishedAt))

	_, err = runner.Run(ctx)
	require.NoError(t, err)

	second, err := st.ListEvidence(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
