package corpus

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/josinaldojr/news-chat-rag/internal/rag"
)

const englishText = "The city council approved a new budget on Tuesday evening after a long debate " +
	"about public transport, school funding and the repair of several old bridges across the river."

type stubSource struct {
	docs []rag.Document
	err  error
}

func (s stubSource) ListDocuments(context.Context) ([]rag.Document, error) {
	return s.docs, s.err
}

func TestLoad_RenumbersAndTrims(t *testing.T) {
	src := stubSource{docs: []rag.Document{
		{ID: 42, Title: "  Banjir  ", URL: " https://kompas.id/a ", FullText: " teks satu "},
		{ID: 7, Title: "Pemilu", URL: "https://kompas.id/b", FullText: "teks dua"},
	}}

	docs, err := Load(context.Background(), src, "", zap.NewNop())
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, rag.Document{ID: 1, Title: "Banjir", URL: "https://kompas.id/a", FullText: "teks satu"}, docs[0])
	assert.Equal(t, 2, docs[1].ID)
}

func TestLoad_Empty(t *testing.T) {
	_, err := Load(context.Background(), stubSource{}, "", zap.NewNop())
	assert.ErrorIs(t, err, rag.ErrEmptyCorpus)
}

func TestLoad_EmptyTextIsKept(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	src := stubSource{docs: []rag.Document{
		{Title: "a", FullText: "berita satu"},
		{Title: "b", FullText: "   "},
		{Title: "c", FullText: "berita tiga"},
	}}

	docs, err := Load(context.Background(), src, "", zap.New(core))
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, 2, docs[1].ID)
	assert.Equal(t, "b", docs[1].Title)
	assert.Empty(t, docs[1].FullText)
	assert.Equal(t, 3, docs[2].ID)

	warned := logs.FilterMessage("Corpus document has empty full_text").All()
	require.Len(t, warned, 1)
	assert.Equal(t, int64(2), warned[0].ContextMap()["id"])
}

func TestLoad_SourceError(t *testing.T) {
	src := stubSource{err: errors.New("db down")}
	_, err := Load(context.Background(), src, "", zap.NewNop())
	assert.ErrorContains(t, err, "db down")
}

func TestLoad_LanguageMismatchIsOnlyWarned(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	src := stubSource{docs: []rag.Document{{Title: "council", FullText: englishText}}}

	docs, err := Load(context.Background(), src, "xyz", zap.New(core))
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.Equal(t, 1, logs.FilterMessage("Corpus document language differs from corpus language").Len())
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "eng", DetectLanguage(englishText))
	assert.Equal(t, "", DetectLanguage(""))
}

func TestFileSource_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "news.json")
	in := []rag.Document{
		{ID: 1, Title: "Banjir", URL: "https://kompas.id/a", FullText: "teks satu"},
		{ID: 2, Title: "Pemilu", URL: "https://kompas.id/b", FullText: "teks dua"},
	}
	require.NoError(t, WriteFile(path, in))

	out, err := NewFileSource(path).ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Pemilu", out[1].Title)
	assert.Equal(t, "teks dua", out[1].FullText)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileSource_IgnoresUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news.json")
	data := `[{"title":"A","url":"https://kompas.id/a","full_text":"isi","author":"x","published_at":"2024-01-01"}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	docs, err := NewFileSource(path).ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "isi", docs[0].FullText)
}

func TestFileSource_Errors(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "missing.json")).ListDocuments(context.Background())
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"title":"not an array"}`), 0o600))
	_, err = NewFileSource(path).ListDocuments(context.Background())
	assert.Error(t, err)
}

func TestParseHTML(t *testing.T) {
	base, _ := url.Parse("https://www.kompas.id/baca/nusantara")
	page := `<html><head><title>Fallback</title>
<meta property="og:title" content="Banjir Rendam Jakarta">
<style>.x{}</style><script>var a = 1;</script></head>
<body><nav>Menu</nav>
<p>Hujan deras sejak pagi.</p><p>Warga mengungsi.</p>
<a href="/baca/kota/banjir-lagi">lagi</a>
<a href="/baca/kota/banjir-lagi#komentar">dup</a>
<a href="https://other.example/x">luar</a>
<a href="/static/logo.png">logo</a>
<a href="#top">top</a>
</body></html>`

	art, err := ParseHTML(page, base)
	require.NoError(t, err)

	assert.Equal(t, "Banjir Rendam Jakarta", art.Title)
	assert.Equal(t, "Hujan deras sejak pagi.\nWarga mengungsi.\nlagi\ndup\nluar\nlogo\ntop", art.Text)
	assert.NotContains(t, art.Text, "Menu")
	assert.NotContains(t, art.Text, "var a")
	assert.Equal(t, []string{"https://www.kompas.id/baca/kota/banjir-lagi"}, art.Links)
}

func TestParseHTML_NoBase(t *testing.T) {
	art, err := ParseHTML(`<title>Judul</title><p>isi</p><a href="/x">x</a>`, nil)
	require.NoError(t, err)
	assert.Equal(t, "Judul", art.Title)
	assert.Empty(t, art.Links)
}

func TestTitles(t *testing.T) {
	assert.Equal(t, "banjir jakarta", FilenameToTitle("/tmp/news/banjir-jakarta.md"))
	assert.Equal(t, "harga beras naik", FilenameToTitle("harga_beras-naik.txt"))
	assert.Equal(t, "banjir lagi", URLToTitle("https://www.kompas.id/baca/kota/banjir-lagi.html"))
	assert.Equal(t, "www.kompas.id", URLToTitle("https://www.kompas.id/"))
}

func TestSupportedFile(t *testing.T) {
	for _, p := range []string{"a.md", "b.TXT", "c.html", "d.htm", "e.pdf"} {
		assert.True(t, SupportedFile(p), p)
	}
	for _, p := range []string{"a.go", "b", "c.json"} {
		assert.False(t, SupportedFile(p), p)
	}
}

func TestSanitizeUTF8(t *testing.T) {
	assert.Equal(t, "abc", sanitizeUTF8("a\xffb\xfec"))
	assert.Equal(t, "berita", sanitizeUTF8("berita"))
	assert.Equal(t, "kafé xy", sanitizeUTF8("kafé x\xff\xfe\xfdy"))
}
