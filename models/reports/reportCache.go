package reports

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/mmdatafocus/ghg_reports/config"
	"github.com/mmdatafocus/ghg_reports/models"
	"github.com/mmdatafocus/ghg_reports/utils"
	"github.com/sirupsen/logrus"
)

// CacheOptions controls GenerateCached. A zero value disables the cache and
// slow-render logging.
type CacheOptions struct {
	Enabled bool
	TTL     time.Duration
	Slow    time.Duration
}

// GenerateCached is Generate with rendered workbooks kept in redis, keyed by
// the report code and a digest of everything the builder reads.
func GenerateCached(ctx context.Context, code models.ReportCode, s models.AppState, opts CacheOptions) ([]byte, error) {
	started := time.Now()
	ctx = utils.SetReportCodeInContext(ctx, code.String())
	key, keyErr := cacheKey(code, s)
	if opts.Enabled && keyErr == nil {
		var cached []byte
		if ok, err := cacheGet(key, &cached); err == nil && ok && len(cached) > 0 {
			return cached, nil
		}
	}

	b, err := Generate(code, s)
	if err != nil {
		return nil, err
	}
	logSlowReport(ctx, started, opts.Slow, map[string]any{"bytes": len(b)})

	if opts.Enabled && keyErr == nil {
		if err := cacheSet(key, b, opts.TTL); err != nil {
			config.GetLogger().WithField("key", key).Warn("report cache write failed: " + err.Error())
		}
	}
	return b, nil
}

func cacheKey(code models.ReportCode, s models.AppState) (string, error) {
	var input any
	switch code {
	case models.ReportCodeSummary:
		input = s.Summary
	case models.ReportCodeObservation:
		input = struct {
			Observation models.ObservationReport
			Summary     []models.ChecklistItem
		}{s.Observation, s.Summary.Checklist}
	default:
		input = s.Findings
	}
	raw, err := json.Marshal(input)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return "report:" + code.String() + ":" + hex.EncodeToString(sum[:]), nil
}

func logSlowReport(ctx context.Context, started time.Time, slow time.Duration, extra map[string]any) {
	d := time.Since(started)
	if slow <= 0 || d < slow {
		return
	}
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	uid, _ := utils.GetUserIdFromContext(ctx)
	code, _ := utils.GetReportCodeFromContext(ctx)
	config.GetLogger().WithFields(logrus.Fields{
		"report":         code,
		"ms":             d.Milliseconds(),
		"user_id":        uid,
		"correlation_id": cid,
		"extra":          extra,
	}).Warn("slow_report")
}

func cacheGet[T any](key string, dest *T) (bool, error) {
	return config.GetRedisObject(key, dest)
}

func cacheSet(key string, obj any, ttl time.Duration) error {
	return config.SetRedisObject(key, obj, ttl)
}
