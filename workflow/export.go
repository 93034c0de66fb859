package workflow

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/mmdatafocus/ghg_reports/config"
	"github.com/mmdatafocus/ghg_reports/models"
	"github.com/mmdatafocus/ghg_reports/models/reports"
	"github.com/mmdatafocus/ghg_reports/utils"
)

var tracer = otel.Tracer("ghg_reports")

type (
	archiveFunc func(ctx context.Context, bucket, object string, data []byte, contentType string, metadata map[string]string) error
	publishFunc func(ctx context.Context, topic string, ev config.ExportEvent) (string, error)
)

// ExportResult is one generated workbook ready to be sent.
type ExportResult struct {
	Filename      string
	ContentType   string
	Data          []byte
	ArchiveObject string
}

// Exporter generates report workbooks. When a bucket or topic is configured
// it also archives the file and announces the export; those side effects
// never fail the export itself.
type Exporter struct {
	cache  reports.CacheOptions
	bucket string
	topic  string

	upload  archiveFunc
	publish publishFunc
	now     func() time.Time
	logger  *logrus.Logger
}

func NewExporter(s config.Settings) *Exporter {
	return &Exporter{
		cache: reports.CacheOptions{
			Enabled: s.ReportCacheEnabled,
			TTL:     s.ReportCacheTTL,
			Slow:    s.ReportSlow,
		},
		bucket: s.ExportBucket,
		topic:  s.ExportTopic,
		upload: utils.UploadBytesToGCS,
		publish: func(ctx context.Context, topic string, ev config.ExportEvent) (string, error) {
			return config.PublishExportEvent(ctx, s.PubSubProject, topic, ev)
		},
		now:    time.Now,
		logger: config.GetLogger(),
	}
}

// Export builds the report for code from state. userId may be empty for
// stateless exports.
func (e *Exporter) Export(ctx context.Context, userId string, code models.ReportCode, state models.AppState) (ExportResult, error) {
	if !code.IsValid() {
		return ExportResult{}, fmt.Errorf("%q: %w", code, models.ErrUnknownReport)
	}
	ctx, span := tracer.Start(ctx, "report.export")
	defer span.End()
	span.SetAttributes(
		attribute.String("report.code", code.String()),
		attribute.String("user.id", userId),
	)

	data, err := reports.GenerateCached(ctx, code, state, e.cache)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate failed")
		return ExportResult{}, err
	}
	res := ExportResult{
		Filename:    reports.ExportFilename(code, state),
		ContentType: reports.ContentType,
		Data:        data,
	}
	span.SetAttributes(
		attribute.String("report.filename", res.Filename),
		attribute.Int("report.bytes", len(data)),
	)

	if e.bucket != "" {
		res.ArchiveObject = e.archiveObject(userId, res.Filename)
		meta := map[string]string{
			"report_code": code.String(),
			"user_id":     userId,
			"size":        strconv.Itoa(len(data)),
		}
		if err := e.upload(ctx, e.bucket, res.ArchiveObject, data, res.ContentType, meta); err != nil {
			config.LogError(e.logger, "Exporter", "Export", "archive", res.ArchiveObject, err)
			res.ArchiveObject = ""
		}
	}
	if e.topic != "" {
		cid, _ := utils.GetCorrelationIdFromContext(ctx)
		ev := config.ExportEvent{
			UserId:        userId,
			ReportCode:    code.String(),
			CaseNumber:    reports.CaseNumber(code, state),
			Filename:      res.Filename,
			Size:          len(data),
			ArchiveObject: res.ArchiveObject,
			ExportedAt:    e.now().UTC(),
			CorrelationId: cid,
		}
		if code == models.ReportCodeFindings {
			ev.Stage = string(state.Findings.BasicInfo.Stage)
		}
		if _, err := e.publish(ctx, e.topic, ev); err != nil {
			config.LogError(e.logger, "Exporter", "Export", "publish", ev, err)
		}
	}
	return res, nil
}

func (e *Exporter) archiveObject(userId, filename string) string {
	owner := userId
	if owner == "" {
		owner = "anonymous"
	}
	return fmt.Sprintf("exports/%s/%s/%s_%s", owner, e.now().UTC().Format("2006/01/02"), uuid.NewString(), filename)
}
