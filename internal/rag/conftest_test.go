package rag

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var errEmbed = errors.New("embedding provider down")

// fakeEmbedder returns vectors by exact text. Unknown or failing texts error.
type fakeEmbedder struct {
	vectors map[string][]float32
	fail    map[string]bool

	// gate, when set, blocks every call until closed.
	gate chan struct{}

	calls    atomic.Int64
	inFlight atomic.Int64
	maxMu    sync.Mutex
	maxSeen  int64
	started  chan struct{}
	once     sync.Once
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)

	f.maxMu.Lock()
	if n > f.maxSeen {
		f.maxSeen = n
	}
	f.maxMu.Unlock()

	if f.started != nil {
		f.once.Do(func() { close(f.started) })
	}
	if f.gate != nil {
		<-f.gate
	}

	if f.fail[text] {
		return nil, errEmbed
	}
	v, ok := f.vectors[text]
	if !ok {
		return nil, errEmbed
	}
	return v, nil
}

func (f *fakeEmbedder) maxInFlight() int64 {
	f.maxMu.Lock()
	defer f.maxMu.Unlock()
	return f.maxSeen
}

type fakeGenerator struct {
	answer string
	err    error

	system      string
	history     []Message
	temperature float32
	calls       int
}

func (g *fakeGenerator) Generate(_ context.Context, system string, history []Message, temperature float32) (string, error) {
	g.calls++
	g.system = system
	g.history = history
	g.temperature = temperature
	return g.answer, g.err
}

// newsCorpus has five documents; the query "banjir" is closest to 2, 4 and 5.
func newsCorpus() ([]Document, map[string][]float32) {
	docs := []Document{
		{ID: 1, Title: "Harga beras naik", URL: "https://kompas.id/1", FullText: "beras"},
		{ID: 2, Title: "Banjir rendam Jakarta", URL: "https://kompas.id/2", FullText: "banjir jakarta"},
		{ID: 3, Title: "Timnas menang", URL: "https://kompas.id/3", FullText: "sepak bola"},
		{ID: 4, Title: "Tanggul jebol", URL: "https://kompas.id/4", FullText: "tanggul"},
		{ID: 5, Title: "Warga mengungsi", URL: "https://kompas.id/5", FullText: "pengungsi"},
	}
	vectors := map[string][]float32{
		"beras":          {1, 0, 0},
		"banjir jakarta": {0, 1, 0.1},
		"sepak bola":     {1, 0.1, 0},
		"tanggul":        {0, 1, 0.2},
		"pengungsi":      {0, 0.9, 0.3},
		"banjir":         {0, 1, 0.15},
	}
	return docs, vectors
}

func embedAll(docs []Document, vectors map[string][]float32) []EmbeddedDocument {
	out := make([]EmbeddedDocument, len(docs))
	for i, d := range docs {
		out[i] = EmbeddedDocument{Document: d, Embedding: vectors[d.FullText]}
	}
	return out
}
