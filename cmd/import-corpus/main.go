package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/josinaldojr/news-chat-rag/internal/corpus"
	"github.com/josinaldojr/news-chat-rag/internal/db"
	logpkg "github.com/josinaldojr/news-chat-rag/internal/logger"
	"github.com/josinaldojr/news-chat-rag/internal/rag"
)

const maxPageBytes = 5 << 20

type options struct {
	fromFiles bool
	path      string
	include   string
	exclude   string
	fromURL   bool
	baseURL   string
	maxPages  int
	rps       float64
	out       string
	toDB      bool
	dbURL     string
	lang      string
	anyLang   bool
}

func main() {
	_ = godotenv.Load()

	var o options
	flag.BoolVar(&o.fromFiles, "from-files", false, "importar a partir de arquivos locais (.md/.txt/.html/.pdf)")
	flag.StringVar(&o.path, "path", "", "diretório base para arquivos locais")
	flag.StringVar(&o.include, "include", "**/*", "glob (doublestar) dos arquivos a importar, relativo a --path")
	flag.StringVar(&o.exclude, "exclude", "", "glob (doublestar) dos arquivos a ignorar")
	flag.BoolVar(&o.fromURL, "from-url", false, "importar via crawl HTTP")
	flag.StringVar(&o.baseURL, "base-url", "", "URL base para crawl (ex: https://www.kompas.id/baca/nusantara)")
	flag.IntVar(&o.maxPages, "max-pages", 50, "limite de páginas para crawl HTTP")
	flag.Float64Var(&o.rps, "rps", 2, "requisições por segundo no crawl (0 = sem limite)")
	flag.StringVar(&o.out, "out", "", "arquivo JSON do corpus a gerar (ex: data/news.json)")
	flag.BoolVar(&o.toDB, "to-db", false, "gravar na tabela news_article do Postgres")
	flag.StringVar(&o.dbURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres DSN")
	flag.StringVar(&o.lang, "lang", "ind", "idioma esperado (ISO 639-3)")
	flag.BoolVar(&o.anyLang, "any-lang", false, "não descartar artigos em outro idioma")
	flag.Parse()

	logger, err := logpkg.NewLogger("local", "info")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := o.validate(); err != nil {
		logger.Fatal("Invalid flags", zap.Error(err))
	}

	ctx := context.Background()
	imp := &importer{opts: o, logger: logger, seen: make(map[string]bool)}

	if o.fromFiles {
		if err := imp.fromFiles(o.path); err != nil {
			logger.Fatal("Import from files failed", zap.Error(err))
		}
	}
	if o.fromURL {
		if err := imp.fromHTTP(ctx, o.baseURL, o.maxPages); err != nil {
			logger.Fatal("Import from HTTP failed", zap.Error(err))
		}
	}

	if len(imp.docs) == 0 {
		logger.Fatal("No articles found")
	}

	if o.out != "" {
		if err := corpus.WriteFile(o.out, imp.docs); err != nil {
			logger.Fatal("Failed to write corpus file", zap.Error(err))
		}
		logger.Info("Corpus file written", zap.String("path", o.out), zap.Int("articles", len(imp.docs)))
	}

	if o.toDB {
		if err := imp.store(ctx); err != nil {
			logger.Fatal("Failed to store articles", zap.Error(err))
		}
	}

	logger.Info("Import finished", zap.Int("articles", len(imp.docs)))
}

func (o options) validate() error {
	if !o.fromFiles && !o.fromURL {
		return fmt.Errorf("use pelo menos um modo: --from-files ou --from-url")
	}
	if o.fromFiles && o.path == "" {
		return fmt.Errorf("--path é obrigatório com --from-files")
	}
	if o.fromURL && o.baseURL == "" {
		return fmt.Errorf("--base-url é obrigatório com --from-url")
	}
	if o.out == "" && !o.toDB {
		return fmt.Errorf("informe --out e/ou --to-db")
	}
	if o.include != "" && !doublestar.ValidatePattern(o.include) {
		return fmt.Errorf("--include inválido: %q", o.include)
	}
	if o.exclude != "" && !doublestar.ValidatePattern(o.exclude) {
		return fmt.Errorf("--exclude inválido: %q", o.exclude)
	}
	if o.toDB && o.dbURL == "" {
		return fmt.Errorf("--database-url (ou DATABASE_URL) é obrigatório com --to-db")
	}
	return nil
}

type importer struct {
	opts   options
	logger *zap.Logger
	docs   []rag.Document
	seen   map[string]bool
}

// add guarda um artigo, descartando vazios, duplicados e de outro idioma.
func (imp *importer) add(title, source, text string) {
	text = strings.TrimSpace(text)
	if text == "" || imp.seen[source] {
		return
	}
	if !imp.opts.anyLang && imp.opts.lang != "" {
		if got := corpus.DetectLanguage(text); got != "" && got != imp.opts.lang {
			imp.logger.Info("Skipping article in other language",
				zap.String("source", source), zap.String("detected", got))
			return
		}
	}
	imp.seen[source] = true
	imp.docs = append(imp.docs, rag.Document{
		ID:       len(imp.docs) + 1,
		Title:    title,
		URL:      source,
		FullText: text,
	})
	imp.logger.Info("Article collected", zap.Int("id", len(imp.docs)), zap.String("title", title), zap.Int("len", len(text)))
}

func (imp *importer) fromFiles(root string) error {
	imp.logger.Info("Importing local files", zap.String("path", root))

	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !corpus.SupportedFile(p) || !imp.selected(root, p) {
			return nil
		}

		title := corpus.FilenameToTitle(p)
		var text string

		switch strings.ToLower(filepath.Ext(p)) {
		case ".pdf":
			text, err = corpus.ExtractPDF(p)
			if err != nil {
				return err
			}
		case ".html", ".htm":
			data, err := os.ReadFile(p)
			if err != nil {
				return fmt.Errorf("read %s: %w", p, err)
			}
			art, err := corpus.ParseHTML(string(data), nil)
			if err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
			if art.Title != "" {
				title = art.Title
			}
			text = art.Text
		default:
			data, err := os.ReadFile(p)
			if err != nil {
				return fmt.Errorf("read %s: %w", p, err)
			}
			text = string(data)
		}

		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		imp.add(title, "file://"+filepath.ToSlash(abs), text)
		return nil
	})
}

// selected aplica --include/--exclude ao caminho relativo à raiz.
func (imp *importer) selected(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	include := imp.opts.include
	if include == "" {
		include = "**/*"
	}
	if ok, _ := doublestar.Match(include, rel); !ok {
		return false
	}
	if imp.opts.exclude != "" {
		if ok, _ := doublestar.Match(imp.opts.exclude, rel); ok {
			return false
		}
	}
	return true
}

func (imp *importer) fromHTTP(ctx context.Context, baseURL string, maxPages int) error {
	imp.logger.Info("Crawling", zap.String("base", baseURL), zap.Int("max_pages", maxPages))

	base, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("base-url inválida: %w", err)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if imp.opts.rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(imp.opts.rps), 1)
	}
	visited := make(map[string]bool)
	queue := []string{base.String()}
	pages := 0

	for len(queue) > 0 && pages < maxPages {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true
		pages++

		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		page, err := fetch(ctx, client, current)
		if err != nil {
			imp.logger.Warn("Fetch failed", zap.String("url", current), zap.Error(err))
			continue
		}

		art, err := corpus.ParseHTML(page, base)
		if err != nil {
			imp.logger.Warn("Parse failed", zap.String("url", current), zap.Error(err))
			continue
		}

		title := art.Title
		if title == "" {
			title = corpus.URLToTitle(current)
		}
		imp.add(title, current, art.Text)

		for _, link := range art.Links {
			if !visited[link] {
				queue = append(queue, link)
			}
		}
	}

	return nil
}

func fetch(ctx context.Context, client *http.Client, u string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}

func (imp *importer) store(ctx context.Context) error {
	pool, err := db.NewPool(ctx, imp.opts.dbURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	repo := rag.NewPgRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(imp.docs),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("Storing"),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	for i := range imp.docs {
		d := &imp.docs[i]
		if _, err := repo.InsertDocument(ctx, d, corpus.DetectLanguage(d.FullText)); err != nil {
			return fmt.Errorf("article %q: %w", d.Title, err)
		}
		_ = bar.Add(1)
	}

	imp.logger.Info("Articles stored", zap.Int("articles", len(imp.docs)))
	return nil
}
