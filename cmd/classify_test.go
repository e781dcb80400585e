package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/evidence-cli/internal/urlnorm"
)

func TestExplainURL(t *testing.T) {
	res := explainURL("http://www.moma.org/artists/123?utm_source=x", "", "", urlnorm.DefaultPolicy())
	assert.Equal(t, "https://www.moma.org/artists/123", res.URL)
	assert.Equal(t, "moma.org", res.Domain)
	assert.Equal(t, "project", res.Kind)
	assert.Equal(t, "org-edu", res.Rule)
	assert.False(t, res.Excluded)
}

func TestExplainURL_InterviewLabel(t *testing.T) {
	res := explainURL("https://blog.example.com/jane", "A conversation with Jane", "Jane Doe Q&A Site", urlnorm.DefaultPolicy())
	assert.Equal(t, "article", res.Kind)
	assert.Equal(t, "Interview article", res.Label)
}

func TestExplainURL_Excluded(t *testing.T) {
	res := explainURL("https://linkedin.com/in/janedoe", "", "", urlnorm.DefaultPolicy())
	assert.True(t, res.Excluded)
	assert.NotEmpty(t, res.Kind)
}

func TestClassifyCmd_YAML(t *testing.T) {
	cfg = nil

	var out bytes.Buffer
	classifyCmd.SetOut(&out)
	defer classifyCmd.SetOut(nil)

	require.NoError(t, classifyCmd.RunE(classifyCmd, []string{"https://example.com/press/launch"}))

	var got classifyResult
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "https://example.com/press/launch", got.URL)
	assert.Equal(t, "example.com", got.Domain)
	assert.Equal(t, "press", got.Kind)
	assert.Equal(t, "press", got.Rule)
	assert.Equal(t, "Press release", got.Label)
	assert.Equal(t, "Institutional press source (example.com)", got.Notes)
	assert.False(t, got.Excluded)
}

func TestQueriesCmd(t *testing.T) {
	queriesName, queriesFirm, queriesCity = " Jane Doe ", "Doe Advisors", ""
	defer func() { queriesName, queriesFirm, queriesCity = "", "", "" }()

	var out bytes.Buffer
	queriesCmd.SetOut(&out)
	defer queriesCmd.SetOut(nil)

	require.NoError(t, queriesCmd.RunE(queriesCmd, nil))
	assert.Contains(t, out.String(), `"Jane Doe"`)
	assert.NotContains(t, out.String(), " Jane Doe \"")
}

func TestQueriesCmd_RequiresName(t *testing.T) {
	queriesName = "  "
	defer func() { queriesName = "" }()

	err := queriesCmd.RunE(queriesCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--name is required")
}
