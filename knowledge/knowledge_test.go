package knowledge_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/habiliai/spoar/knowledge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBase() *knowledge.Base {
	return knowledge.New(
		knowledge.Document{Title: "Password Reset Policy", Content: "Reset your password every 90 days via the portal."},
		knowledge.Document{Title: "Vacation Policy", Content: "Employees get 20 days of paid leave."},
		knowledge.Document{Title: "VPN Setup", Content: "Install the client and use your SSO password."},
		knowledge.Document{Title: "Expense Reports", Content: "Submit receipts within 30 days."},
		knowledge.Document{Title: "Password Managers", Content: "Approved tools are listed on the wiki."},
	)
}

func TestSearch(t *testing.T) {
	base := sampleBase()

	got := base.Search("How do I reset my PASSWORD")
	parts := strings.Split(got, "\n\n")
	require.Len(t, parts, knowledge.MaxResults)
	assert.Equal(t, "Title: Password Reset Policy\nContent: Reset your password every 90 days via the portal.", parts[0])
	assert.True(t, strings.HasPrefix(parts[1], "Title: VPN Setup"))
	assert.True(t, strings.HasPrefix(parts[2], "Title: Password Managers"))
}

func TestSearchNoWords(t *testing.T) {
	assert.Equal(t, knowledge.NoWordsResult, sampleBase().Search("is a  of"))
	assert.Equal(t, knowledge.NoWordsResult, knowledge.New().Search(""))
}

func TestSearchNoMatches(t *testing.T) {
	got := sampleBase().Search("Quantum Entanglement")
	assert.Equal(t, "No relevant documents found for query: 'quantum entanglement'. Try simpler or different keywords.", got)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"title": "Onboarding", "content": "Read the handbook.", "category": "hr"},
		{"name": "Seoul", "info": "Capital of South Korea", "weather": "Four seasons"},
		{"count": 3}
	]`), 0o644))

	base, err := knowledge.LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 2, base.Len())

	docs := base.Documents()
	assert.Equal(t, "Onboarding", docs[0].Title)
	assert.Equal(t, "hr", docs[0].Metadata["category"])
	assert.Equal(t, "Seoul", docs[1].Title)
	assert.Equal(t, "info: Capital of South Korea weather: Four seasons", docs[1].Content)

	assert.Contains(t, base.Search("korea"), "Title: Seoul")
}

func TestLoadFileMissing(t *testing.T) {
	base, err := knowledge.LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Zero(t, base.Len())
}

func TestLoadFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"title": "not an array"}`), 0o644))

	_, err := knowledge.LoadFile(path)
	assert.Error(t, err)
}
