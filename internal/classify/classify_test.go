package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/evidence-cli/internal/model"
)

func TestClassify_Examples(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		url      string
		title    string
		siteName string
		want     model.Kind
	}{
		{"museum exhibition", "https://metmuseum.org/exhibitions/artist-profile", "", "", model.KindProject},
		{"publication", "https://nytimes.com/2023/art/story", "", "", model.KindArticle},
		{"org fallback", "https://foo.org", "", "", model.KindProject},
		{"foundation artist page", "https://www.guggenheim-foundation.org/artist/jane", "", "", model.KindProject},
		{"publication beats press path", "https://www.nytimes.com/press/announcement", "", "", model.KindArticle},
		{"publication beats about path", "https://www.theguardian.com/about", "", "", model.KindArticle},
		{"press path", "https://doeadvisors.com/press/2024-launch", "", "", model.KindPress},
		{"newsroom path", "https://doeadvisors.com/newsroom/item", "", "", model.KindPress},
		{"media path is press", "https://doeadvisors.com/media/kit", "", "", model.KindPress},
		{"photo path", "https://doeadvisors.com/photos/1", "", "", model.KindImages},
		{"image path", "https://doeadvisors.com/assets/image-42", "", "", model.KindImages},
		{"about path", "https://doeadvisors.com/about", "", "", model.KindWebsite},
		{"team path", "https://doeadvisors.com/our-team", "", "", model.KindWebsite},
		{"advisory path", "https://doeadvisors.com/advisory-board", "", "", model.KindWebsite},
		{"official title", "https://janedoe.com/", "Jane Doe | Official Site", "", model.KindWebsite},
		{"homepage site name", "https://janedoe.com/", "", "Jane Doe Homepage", model.KindWebsite},
		{"edu fallback", "https://art.edu/news/jane", "", "", model.KindProject},
		{"museum without project path", "https://museumofx.com/visit", "", "", model.KindArticle},
		{"default", "https://blog.example.com/jane-doe", "", "", model.KindArticle},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Classify(tt.url, tt.title, tt.siteName)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_DomainNotPath(t *testing.T) {
	// The institution rule looks at the registrable domain, so a museum in
	// the subdomain alone does not count.
	got, ok := Classify("https://museum.example.com/artist/jane", "", "")
	require.True(t, ok)
	assert.Equal(t, model.KindArticle, got)
}

func TestClassify_MatchesWholeURL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		url  string
		want model.Kind
	}{
		{"press in host", "https://www.pressherald.com/2023/jane-doe", model.KindPress},
		{"media in host", "https://mediagallery.com/x", model.KindPress},
		{"photo in query", "https://ex.com/item?type=photo", model.KindImages},
		{"image in query", "https://ex.com/view?src=image", model.KindImages},
		{"about in host", "https://aboutjane.com/", model.KindWebsite},
		{"team in query", "https://ex.com/?section=team", model.KindWebsite},
		{"artist in query on museum domain", "https://museumofx.com/?q=artist", model.KindProject},
		{"uppercase host", "https://NEWSROOM.EX.COM/", model.KindPress},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Classify(tt.url, "", "")
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRules_OrderAndDefault(t *testing.T) {
	rs := Rules()
	require.Len(t, rs, 7)

	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.Name
	}
	assert.Equal(t, []string{
		"museum-project",
		"publication",
		"press",
		"images",
		"official",
		"org-edu",
		"default",
	}, names)

	last := rs[len(rs)-1]
	assert.True(t, last.Match(Signals{}))
	assert.Equal(t, model.KindArticle, last.Kind)

	// Mutating the copy leaves the table intact.
	rs[0] = Rule{}
	assert.Equal(t, "museum-project", Rules()[0].Name)
}

func TestRules_Individually(t *testing.T) {
	byName := make(map[string]Rule)
	for _, r := range Rules() {
		byName[r.Name] = r
	}

	assert.True(t, byName["museum-project"].Match(Signals{Domain: "moma-collection.org", Lower: "https://moma-collection.org/projects/1"}))
	assert.False(t, byName["museum-project"].Match(Signals{Domain: "moma-collection.org", Lower: "https://moma-collection.org/visit"}))
	assert.True(t, byName["publication"].Match(Signals{Domain: "ft.com"}))
	assert.False(t, byName["publication"].Match(Signals{Domain: "ftxcom.net"}))
	assert.True(t, byName["images"].Match(Signals{Lower: "https://ex.com/collection/images/4"}))
	assert.True(t, byName["official"].Match(Signals{Title: "OFFICIAL"}))
	assert.False(t, byName["official"].Match(Signals{Lower: "https://ex.com/contact"}))
	assert.True(t, byName["org-edu"].Match(Signals{Domain: "stanford.edu"}))
	assert.False(t, byName["org-edu"].Match(Signals{Domain: "org.example.com"}))
}

func TestMatch_ReturnsRule(t *testing.T) {
	r, ok := Match(NewSignals("https://doeadvisors.com/press/x", "", ""))
	require.True(t, ok)
	assert.Equal(t, "press", r.Name)
	assert.Equal(t, model.KindPress, r.Kind)
}

func TestNewSignals(t *testing.T) {
	s := NewSignals("https://www.MetMuseum.org/Exhibitions/Jane?x=1", "T", "S")
	assert.Equal(t, "metmuseum.org", s.Domain)
	assert.Equal(t, "https://www.metmuseum.org/exhibitions/jane?x=1", s.Lower)
	assert.Equal(t, "T", s.Title)
	assert.Equal(t, "S", s.SiteName)
}
