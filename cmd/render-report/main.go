package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mmdatafocus/ghg_reports/config"
	"github.com/mmdatafocus/ghg_reports/models"
	"github.com/mmdatafocus/ghg_reports/models/reports"
	"github.com/mmdatafocus/ghg_reports/storage"
)

func main() {
	in := flag.String("in", "", "State JSON file (a stored record or an exported state)")
	userID := flag.String("user-id", "", "Load the state of this user from the configured store instead of -in")
	report := flag.String("report", "all", "G-3022, G-3026, G-3027 or all")
	out := flag.String("out", ".", "Output directory")
	flag.Parse()

	if (*in == "") == (*userID == "") {
		fmt.Fprintln(os.Stderr, "exactly one of --in or --user-id is required")
		os.Exit(1)
	}
	codes, err := parseCodes(*report)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	raw, err := readState(*in, *userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load state: %v\n", err)
		os.Exit(1)
	}
	state, err := models.DecodeState(raw, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid state: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	written, err := renderAll(state, codes, *out)
	for _, path := range written {
		fmt.Println(path)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseCodes(s string) ([]models.ReportCode, error) {
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		return models.AllReportCodes, nil
	}
	var codes []models.ReportCode
	for _, part := range config.SplitAndTrim(s) {
		code, err := models.ParseReportCode(part)
		if err != nil {
			return nil, fmt.Errorf("--report %q: %w", part, err)
		}
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("--report is empty")
	}
	return codes, nil
}

func readState(path, userID string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	settings, err := config.GetSettings()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	store, err := storage.Open(ctx, settings)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Load(ctx, userID)
}

// renderAll writes one workbook per code and returns the paths written.
func renderAll(state models.AppState, codes []models.ReportCode, dir string) ([]string, error) {
	var written []string
	for _, code := range codes {
		b, err := reports.Generate(code, state)
		if err != nil {
			return written, err
		}
		path := filepath.Join(dir, reports.ExportFilename(code, state))
		if err := os.WriteFile(path, b, 0o644); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
