package divreminder

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/divreminder/divreminder/domain"
	"github.com/divreminder/divreminder/export"
	"github.com/divreminder/divreminder/llm"
	"github.com/divreminder/divreminder/webfetch"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dividendPage = `<!DOCTYPE html>
<html><body>
<script id="dividend-data" type="application/json">
{"tickers": [
  {"symbol": "TTE", "company": "TotalEnergies", "isin": "FR0000120271", "dividends": [
    {"exDate": "2026-01-02", "paymentDate": "2026-01-06", "amount": 0.85},
    {"exDate": "2026-03-28", "paymentDate": "2026-04-01", "amount": 0.85}
  ]},
  {"symbol": "SAN", "dividends": [
    {"exDate": "2026-05-10", "paymentDate": "2026-05-14", "amount": "€3.92"}
  ]},
  {"symbol": "KO", "company": "Coca-Cola", "dividends": [
    {"exDate": "2026-03-14", "paymentDate": "2026-04-01", "amount": 0.51}
  ]}
]}
</script>
</body></html>`

func setupTestApp(t *testing.T) *App {
	t.Helper()

	app, err := New(
		WithConfigDir(t.TempDir()),
		WithDatabase(""),
		WithFetcher(webfetch.NewClient(webfetch.WithRateLimit(0, 0))),
	)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() { app.Close() })
	return app
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()

	d, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		t.Fatalf("parsing date %s: %v", value, err)
	}
	return d
}

func TestNew(t *testing.T) {
	t.Run("should build components from defaults", func(t *testing.T) {
		app, err := New()
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if app.Config.Sync.URL != DefaultSyncURL {
			t.Fatalf("\nwanted:\n%s\ngot:\n%s", DefaultSyncURL, app.Config.Sync.URL)
		}
		if app.Fetcher == nil || app.Scraper == nil || app.Quotes == nil {
			t.Fatalf("\nwanted:\nfetcher, scraper and quote client\ngot:\n%+v", app)
		}
	})

	t.Run("should fail operations without a repository", func(t *testing.T) {
		app, err := New()
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if _, err := app.SeedSectors(); !errors.Is(err, errNoRepo) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", errNoRepo, err)
		}
	})

	t.Run("should wrap option errors", func(t *testing.T) {
		_, err := New(WithConfig(nil))
		if err == nil || !strings.Contains(err.Error(), "applying option on divreminder") {
			t.Fatalf("\nwanted:\napplying option error\ngot:\n%v", err)
		}
	})
}

func TestWriteLog(t *testing.T) {
	t.Run("should store the entry and call OnLog", func(t *testing.T) {
		app := setupTestApp(t)
		var seen *domain.Log
		app.OnLog = func(log *domain.Log) { seen = log }

		if err := app.WriteLog("warn", "something odd"); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		logs, err := app.Repo.GetLogs()
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(logs) != 1 || logs[0].Level != "WARN" || logs[0].Message != "something odd" {
			t.Fatalf("\nwanted:\none WARN entry\ngot:\n%+v", logs)
		}
		if seen == nil || seen.ID != logs[0].ID {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", logs[0], seen)
		}
	})

	t.Run("should reject unknown levels", func(t *testing.T) {
		app := setupTestApp(t)
		if err := app.WriteLog("FATAL", "x"); err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})
}

func TestSyncDividends(t *testing.T) {
	t.Run("should create products, add dividends and skip duplicates", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(dividendPage))
		}))
		defer srv.Close()

		app := setupTestApp(t)
		ko, err := app.AddProduct(&domain.Product{Ticker: "KO", Name: "Coca-Cola"})
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if _, err := app.AddDividend(ko, mustDate(t, "2026-04-01"), decimal.RequireFromString("0.51")); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		result, err := app.SyncDividends(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if result.ProductsCreated != 2 || result.DividendsAdded != 3 || result.DividendsSkipped != 1 {
			t.Fatalf("\nwanted:\ncreated 2, added 3, skipped 1\ngot:\n%+v", result)
		}

		san, err := app.Repo.GetProductByTicker("SAN")
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if san.Name != "SAN" {
			t.Fatalf("\nwanted:\nSAN\ngot:\n%s", san.Name)
		}

		again, err := app.SyncDividends(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if again.ProductsCreated != 0 || again.DividendsAdded != 0 || again.DividendsSkipped != 4 {
			t.Fatalf("\nwanted:\ncreated 0, added 0, skipped 4\ngot:\n%+v", again)
		}

		runs, err := app.Repo.GetSyncRuns()
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("\nwanted:\n2 runs\ngot:\n%d", len(runs))
		}
		for _, run := range runs {
			if run.FinishedAt == nil || run.Error != "" || run.URL != srv.URL {
				t.Fatalf("\nwanted:\nfinished run without error\ngot:\n%+v", run)
			}
		}

		logs, err := app.Repo.GetLogs()
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		var created, summaries int
		for _, log := range logs {
			if log.SyncRunID == nil {
				t.Fatalf("\nwanted:\nlog linked to a run\ngot:\n%+v", log)
			}
			if strings.HasPrefix(log.Message, "created product") {
				created++
			}
			if strings.HasPrefix(log.Message, "imported") {
				summaries++
			}
		}
		if created != 2 || summaries != 2 {
			t.Fatalf("\nwanted:\n2 product logs and 2 summaries\ngot:\n%d and %d", created, summaries)
		}
	})

	t.Run("should record a failed run when the page holds no data", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html><body><p>nothing here</p></body></html>"))
		}))
		defer srv.Close()

		app := setupTestApp(t)
		_, err := app.SyncDividends(context.Background(), srv.URL)
		if err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}

		runs, err := app.Repo.GetSyncRuns()
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(runs) != 1 || runs[0].Error == "" {
			t.Fatalf("\nwanted:\none failed run\ngot:\n%+v", runs)
		}

		logs, err := app.Repo.GetLogs()
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(logs) != 1 || logs[0].Level != "ERROR" {
			t.Fatalf("\nwanted:\none ERROR log\ngot:\n%+v", logs)
		}
	})
}

func TestDumpPage(t *testing.T) {
	t.Run("should prettify JSON pages", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"a":1}`))
		}))
		defer srv.Close()

		app := setupTestApp(t)
		_, body, err := app.DumpPage(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		want := "{\n  \"a\": 1\n}"
		if string(body) != want {
			t.Fatalf("\nwanted:\n%s\ngot:\n%s", want, body)
		}
	})
}

func TestProducts(t *testing.T) {
	t.Run("should add and update a product with sectors", func(t *testing.T) {
		app := setupTestApp(t)
		if _, err := app.SeedSectors(); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		sectors, err := app.Repo.GetSectors()
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		product := &domain.Product{Ticker: " tte.pa ", Name: "TotalEnergies", ISIN: "fr0000120271"}
		id, err := app.AddProduct(product, sectors[0].ID, sectors[1].ID)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		got, err := app.Repo.GetProductWithSectors(id)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if got.Product.Ticker != "TTE.PA" || got.Product.ISIN != "FR0000120271" || len(got.Sectors) != 2 {
			t.Fatalf("\nwanted:\nTTE.PA with 2 sectors\ngot:\n%+v %d", got.Product, len(got.Sectors))
		}

		product.Name = "TotalEnergies SE"
		if err := app.UpdateProduct(product, nil); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		got, _ = app.Repo.GetProductWithSectors(id)
		if got.Product.Name != "TotalEnergies SE" || len(got.Sectors) != 2 {
			t.Fatalf("\nwanted:\nrenamed product keeping 2 sectors\ngot:\n%+v %d", got.Product, len(got.Sectors))
		}

		if err := app.UpdateProduct(product, []int64{}); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		got, _ = app.Repo.GetProductWithSectors(id)
		if len(got.Sectors) != 0 {
			t.Fatalf("\nwanted:\nno sectors\ngot:\n%d", len(got.Sectors))
		}
	})

	t.Run("should reject products without ticker", func(t *testing.T) {
		app := setupTestApp(t)
		if _, err := app.AddProduct(&domain.Product{Name: "Nameless"}); !errors.Is(err, ErrInvalidProduct) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", ErrInvalidProduct, err)
		}
	})

	t.Run("should reject dividends of unknown products", func(t *testing.T) {
		app := setupTestApp(t)
		_, err := app.AddDividend(42, mustDate(t, "2026-01-01"), decimal.NewFromInt(1))
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", domain.ErrNotFound, err)
		}
	})

	t.Run("should reject negative dividends", func(t *testing.T) {
		app := setupTestApp(t)
		_, err := app.AddDividend(1, mustDate(t, "2026-01-01"), decimal.NewFromInt(-1))
		if !errors.Is(err, ErrInvalidDividend) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", ErrInvalidDividend, err)
		}
	})
}

func TestSeedSectors(t *testing.T) {
	t.Run("should seed only an empty database", func(t *testing.T) {
		app := setupTestApp(t)

		n, err := app.SeedSectors()
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if n != len(DefaultSectors) {
			t.Fatalf("\nwanted:\n%d\ngot:\n%d", len(DefaultSectors), n)
		}

		n, err = app.SeedSectors()
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if n != 0 {
			t.Fatalf("\nwanted:\n0\ngot:\n%d", n)
		}

		sectors, _ := app.Repo.GetSectors()
		if len(sectors) != len(DefaultSectors) {
			t.Fatalf("\nwanted:\n%d\ngot:\n%d", len(DefaultSectors), len(sectors))
		}
	})
}

func TestExportCSV(t *testing.T) {
	t.Run("should export every dividend", func(t *testing.T) {
		app := setupTestApp(t)
		id, _ := app.AddProduct(&domain.Product{Ticker: "KO", Name: "Coca-Cola"})
		app.AddDividend(id, mustDate(t, "2026-04-01"), decimal.RequireFromString("0.51"))

		var buf bytes.Buffer
		n, err := app.ExportCSV(&buf)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		want := "Product Name,Product Ticker,Dividend Date,Dividend Amount (€)\nCoca-Cola,KO,2026-04-01,0.51\n"
		if n != 1 || buf.String() != want {
			t.Fatalf("\nwanted:\n%s\ngot:\n%s", want, buf.String())
		}
	})

	t.Run("should report an empty database", func(t *testing.T) {
		app := setupTestApp(t)
		if _, err := app.ExportCSV(&bytes.Buffer{}); !errors.Is(err, export.ErrNothingToExport) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", export.ErrNothingToExport, err)
		}
	})
}

type stubCompleter struct {
	answer string
	prompt string
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.answer, nil
}

func TestSendPrompt(t *testing.T) {
	t.Run("should report a missing key", func(t *testing.T) {
		app := setupTestApp(t)

		_, err := app.SendPrompt(context.Background(), llm.ProviderGemini, "hello")
		var missing *llm.MissingKeyError
		if !errors.As(err, &missing) {
			t.Fatalf("\nwanted:\n*llm.MissingKeyError\ngot:\n%v", err)
		}
		if err.Error() != "Gemini API key not set" {
			t.Fatalf("\nwanted:\nGemini API key not set\ngot:\n%s", err.Error())
		}
	})

	t.Run("should pass the stored key and model to the provider", func(t *testing.T) {
		app := setupTestApp(t)
		app.Repo.UpsertApiKey(&domain.ApiKey{Provider: domain.ProviderOpenAI, Key: "sk-test"})
		app.Repo.SetOpenAIModel("gpt-test")

		stub := &stubCompleter{answer: "42"}
		var gotKey, gotModel string
		answer, err := app.sendPrompt(context.Background(), llm.ProviderOpenAI, "question", func(_ context.Context, _ llm.Provider, key, model string) (llm.Completer, error) {
			gotKey, gotModel = key, model
			return stub, nil
		})
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if answer != "42" || stub.prompt != "question" {
			t.Fatalf("\nwanted:\n42 for question\ngot:\n%s for %s", answer, stub.prompt)
		}
		if gotKey != "sk-test" || gotModel != "gpt-test" {
			t.Fatalf("\nwanted:\nsk-test gpt-test\ngot:\n%s %s", gotKey, gotModel)
		}
	})
}

func TestRunReminder(t *testing.T) {
	t.Run("should notify about dividends within the window", func(t *testing.T) {
		app := setupTestApp(t)
		id, _ := app.AddProduct(&domain.Product{Ticker: "KO", Name: "Coca-Cola"})
		app.AddDividend(id, mustDate(t, "2026-04-01"), decimal.RequireFromString("0.51"))

		msg, err := app.RunReminder(context.Background(), mustDate(t, "2026-03-29"))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if msg == nil || msg.Title != "Dividend Reminder" {
			t.Fatalf("\nwanted:\nDividend Reminder\ngot:\n%+v", msg)
		}

		msg, err = app.RunReminder(context.Background(), mustDate(t, "2026-03-01"))
		if err != nil || msg != nil {
			t.Fatalf("\nwanted:\nnil, nil\ngot:\n%+v, %v", msg, err)
		}
	})

	t.Run("should reject an unknown notifier", func(t *testing.T) {
		app := setupTestApp(t)
		app.Config.Reminder.Notifier = "pigeon"
		if _, err := app.RunReminder(context.Background(), time.Now()); err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})

	t.Run("should require mailgun settings", func(t *testing.T) {
		app := setupTestApp(t)
		app.Config.Reminder.Notifier = "mailgun"
		if _, err := app.Notifier(); err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})
}

func TestStats(t *testing.T) {
	t.Run("should count and sum dividends", func(t *testing.T) {
		app := setupTestApp(t)
		id, _ := app.AddProduct(&domain.Product{Ticker: "KO", Name: "Coca-Cola"})
		app.AddDividend(id, mustDate(t, "2026-04-01"), decimal.RequireFromString("0.5"))
		app.AddDividend(id, mustDate(t, "2026-07-01"), decimal.RequireFromString("0.25"))
		app.AddDividend(id, mustDate(t, "2027-01-01"), decimal.RequireFromString("1"))

		stats, err := app.Stats(mustDate(t, "2026-03-30"))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if stats.Products != 1 || stats.Dividends != 3 || stats.Sectors != 0 {
			t.Fatalf("\nwanted:\n1 product, 3 dividends\ngot:\n%+v", stats)
		}
		if !stats.UpcomingTotal.Equal(decimal.RequireFromString("0.5")) {
			t.Fatalf("\nwanted:\n0.5\ngot:\n%s", stats.UpcomingTotal)
		}
		if !stats.YearTotal.Equal(decimal.RequireFromString("0.75")) {
			t.Fatalf("\nwanted:\n0.75\ngot:\n%s", stats.YearTotal)
		}
	})
}

func TestConfig(t *testing.T) {
	t.Run("should write defaults on first use", func(t *testing.T) {
		dir := t.TempDir()
		cfg, err := LoadConfig(dir)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
			t.Fatalf("\nwanted:\nconfig.yaml\ngot:\n%v", err)
		}
		if cfg.Reminder.WindowDays != 7 || cfg.Reminder.Schedule != "0 9 * * *" || cfg.Quote.CacheTTL != 15*time.Minute {
			t.Fatalf("\nwanted:\ndefaults\ngot:\n%+v", cfg)
		}
		if cfg.DatabasePath() != filepath.Join(dir, "divreminder.db") {
			t.Fatalf("\nwanted:\n%s\ngot:\n%s", filepath.Join(dir, "divreminder.db"), cfg.DatabasePath())
		}
	})

	t.Run("should read overrides from the environment and .env", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("DIVREMINDER_REMINDER_WINDOW_DAYS", "3")
		if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("DIVREMINDER_MAILGUN_DOMAIN=mg.example.com\n"), 0600); err != nil {
			t.Fatalf("writing .env: %v", err)
		}
		t.Cleanup(func() { os.Unsetenv("DIVREMINDER_MAILGUN_DOMAIN") })

		cfg, err := LoadConfig(dir)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if cfg.Reminder.WindowDays != 3 {
			t.Fatalf("\nwanted:\n3\ngot:\n%d", cfg.Reminder.WindowDays)
		}
		if cfg.Mailgun.Domain != "mg.example.com" {
			t.Fatalf("\nwanted:\nmg.example.com\ngot:\n%s", cfg.Mailgun.Domain)
		}
	})

	t.Run("should persist a changed key", func(t *testing.T) {
		dir := t.TempDir()
		cfg, err := LoadConfig(dir)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if err := cfg.Set("reminder.currency", "USD"); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if err := cfg.Set("reminder.colour", "blue"); err == nil {
			t.Fatalf("\nwanted:\nunknown key error\ngot:\nnil")
		}

		reloaded, err := LoadConfig(dir)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if reloaded.Reminder.Currency != "USD" {
			t.Fatalf("\nwanted:\nUSD\ngot:\n%s", reloaded.Reminder.Currency)
		}
	})
}

func TestSyncRunContext(t *testing.T) {
	t.Run("should carry the run id and url", func(t *testing.T) {
		ctx := context.Background()
		if _, ok := SyncRunIDFromContext(ctx); ok {
			t.Fatalf("\nwanted:\nno id\ngot:\nid")
		}

		id := uuid.MustParse("01937d13-9632-72aa-83b9-c10ea1abbdd6")
		ctx = ContextWithSyncRun(ctx, id, "https://example.com")
		got, ok := SyncRunIDFromContext(ctx)
		if !ok || got != id {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", id, got)
		}
		url, ok := SyncURLFromContext(ctx)
		if !ok || url != "https://example.com" {
			t.Fatalf("\nwanted:\nhttps://example.com\ngot:\n%s", url)
		}
	})
}
