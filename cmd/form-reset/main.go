package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mmdatafocus/ghg_reports/config"
	"github.com/mmdatafocus/ghg_reports/models"
	"github.com/mmdatafocus/ghg_reports/storage"
	"github.com/mmdatafocus/ghg_reports/utils"
)

func main() {
	userID := flag.String("user-id", "", "Required: user id of the stored record")
	report := flag.String("report", "", "Required: G-3022, G-3026 or G-3027")
	dryRun := flag.Bool("dry-run", true, "Show what would change (no writes)")
	confirm := flag.String("confirm", "", "Type RESET to proceed when dry-run=false")
	flag.Parse()

	if strings.TrimSpace(*userID) == "" || strings.TrimSpace(*report) == "" {
		fmt.Fprintln(os.Stderr, "--user-id and --report are required")
		os.Exit(1)
	}
	code, err := models.ParseReportCode(*report)
	if err != nil {
		fmt.Fprintf(os.Stderr, "--report %q: %v\n", *report, err)
		os.Exit(1)
	}
	if !*dryRun && strings.TrimSpace(*confirm) != models.ResetConfirmation {
		fmt.Fprintln(os.Stderr, "set --confirm=RESET to proceed")
		os.Exit(1)
	}

	settings, err := config.GetSettings()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	store, err := storage.Open(ctx, settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := resetRecord(ctx, store, os.Stdout, *userID, code, *dryRun, time.Now()); err != nil {
		config.LogError(config.GetLogger(), "form-reset", "main", "reset", logrus.Fields{"user_id": *userID, "report": code}, err)
		os.Exit(1)
	}
}

// resetRecord resets one report of a stored record. With dryRun it only
// prints the before and after counts.
func resetRecord(ctx context.Context, store storage.Store, w io.Writer, userID string, code models.ReportCode, dryRun bool, now time.Time) error {
	raw, err := store.Load(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return fmt.Errorf("no record for %q", userID)
		}
		return err
	}
	before, err := models.DecodeState(raw, now)
	if err != nil {
		return err
	}
	after, err := models.Reset(before, code, models.ResetConfirmation)
	if err != nil {
		return err
	}

	printCounts(w, code, before, after)
	if dryRun {
		_, _ = fmt.Fprintln(w, "dry run: nothing written")
		return nil
	}

	body, err := models.EncodeState(after)
	if err != nil {
		return err
	}
	record, err := storage.Stamp(body, now)
	if err != nil {
		return err
	}
	if err := store.Save(ctx, userID, record); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "%s reset for %s\n", code, userID)
	return nil
}

func printCounts(w io.Writer, code models.ReportCode, before, after models.AppState) {
	line := func(label string, b, a int) {
		_, _ = fmt.Fprintf(w, "%-18s %4d -> %d\n", label, b, a)
	}
	switch code {
	case models.ReportCodeSummary:
		line("checklist marked", markedCount(before.Summary.Checklist), markedCount(after.Summary.Checklist))
		line("interviews", len(before.Summary.Conclusion.Interviews), len(after.Summary.Conclusion.Interviews))
		line("pending items", len(before.Summary.Conclusion.PendingItems), len(after.Summary.Conclusion.PendingItems))
	case models.ReportCodeObservation:
		line("checklist marked", markedCount(before.Observation.Checklist), markedCount(after.Observation.Checklist))
		line("sampling results", len(before.Observation.SamplingResults), len(after.Observation.SamplingResults))
		line("emission factors", len(before.Observation.EmissionFactors), len(after.Observation.EmissionFactors))
	case models.ReportCodeFindings:
		line("findings", len(before.Findings.Findings), len(after.Findings.Findings))
	}
}

// markedCount counts checklist items whose status is anything but the seed
// default.
func markedCount(items []models.ChecklistItem) int {
	n := 0
	for _, it := range items {
		if it.Status != "" && it.Status != models.ComplianceStatusNA {
			n++
		}
	}
	return n
}
