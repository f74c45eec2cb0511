package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"quiz-assessment-service/internal/config"
	"quiz-assessment-service/internal/report"
)

func TestReportJSONUsesSampleStore(t *testing.T) {
	var out bytes.Buffer
	err := runReport(context.Background(), config.Config{}, reportOptions{format: "json", userID: "user-1"}, &out)
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	var doc struct {
		Overview struct {
			Totals map[string]float64 `json:"totals"`
		} `json:"overview"`
		User *struct {
			Summary map[string]float64 `json:"summary"`
		} `json:"user"`
	}
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Overview.Totals["quizzes"] != 2 || doc.Overview.Totals["attempts"] != 0 {
		t.Fatalf("unexpected totals: %v", doc.Overview.Totals)
	}
	if doc.User == nil || doc.User.Summary["totalAttempts"] != 0 {
		t.Fatalf("expected empty user report, got %+v", doc.User)
	}
}

func TestReportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overview.xlsx")
	if err := runReport(context.Background(), config.Config{}, reportOptions{format: "xlsx", out: path}, &bytes.Buffer{}); err != nil {
		t.Fatalf("report: %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	if sheets := f.GetSheetList(); len(sheets) == 0 || sheets[0] != report.SheetTotals {
		t.Fatalf("unexpected sheets %v", sheets)
	}
}

func TestReportRejectsBadOptions(t *testing.T) {
	ctx := context.Background()
	if err := runReport(ctx, config.Config{}, reportOptions{format: "xlsx"}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error without --out")
	}
	if err := runReport(ctx, config.Config{}, reportOptions{format: "csv"}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if err := runReport(ctx, config.Config{}, reportOptions{format: "json", userID: "ghost"}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error for unknown user")
	}
}

func TestNewLoggerHonorsConfig(t *testing.T) {
	var cfg config.Config
	cfg.Log.Level = "warn"
	cfg.Log.Format = "json"

	var buf bytes.Buffer
	logger := newLogger(cfg, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %q", buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal(lines[0], &entry); err != nil {
		t.Fatalf("expected json log line: %v", err)
	}
	if entry["msg"] != "shown" || entry["k"] != "v" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	if parseLevel("debug") != slog.LevelDebug {
		t.Fatalf("expected debug")
	}
	if parseLevel("loud") != slog.LevelInfo {
		t.Fatalf("expected info fallback")
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(os.TempDir(), "absent.yaml"))
	cmd := newRootCmd()
	for _, name := range []string{"start", "migrate", "report"} {
		if sub, _, err := cmd.Find([]string{name}); err != nil || sub.Name() != name {
			t.Fatalf("missing subcommand %s: %v", name, err)
		}
	}
}
