package config

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// ExportEvent announces that a report was generated.
type ExportEvent struct {
	UserId        string    `json:"user_id,omitempty"`
	ReportCode    string    `json:"report_code"`
	CaseNumber    string    `json:"case_number"`
	Stage         string    `json:"stage,omitempty"`
	Filename      string    `json:"filename"`
	Size          int       `json:"size"`
	ArchiveObject string    `json:"archive_object,omitempty"`
	ExportedAt    time.Time `json:"exported_at"`
	CorrelationId string    `json:"correlation_id"`
}

// Attributes are the message attributes subscribers filter on.
func (ev ExportEvent) Attributes() map[string]string {
	attrs := map[string]string{
		"report_code":    ev.ReportCode,
		"correlation_id": ev.CorrelationId,
	}
	if ev.Stage != "" {
		attrs["stage"] = ev.Stage
	}
	return attrs
}

var (
	pubsubClients   = map[string]*pubsub.Client{}
	pubsubClientsMu sync.Mutex
)

// getPubSubClient returns the shared client for projectID, connecting with
// retries on first use. PUBSUB_CREDENTIALS_JSON overrides Application
// Default Credentials.
func getPubSubClient(ctx context.Context, projectID string) (*pubsub.Client, error) {
	if projectID == "" {
		return nil, errors.New("pubsub project is not configured")
	}
	pubsubClientsMu.Lock()
	defer pubsubClientsMu.Unlock()
	if c, ok := pubsubClients[projectID]; ok {
		return c, nil
	}

	var opts []option.ClientOption
	if credJSON := os.Getenv("PUBSUB_CREDENTIALS_JSON"); credJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	}
	err := connectWithRetry(ctx, "pubsub", logrus.Fields{"project_id": projectID}, func(ctx context.Context) error {
		c, err := pubsub.NewClient(ctx, projectID, opts...)
		if err != nil {
			return err
		}
		pubsubClients[projectID] = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pubsubClients[projectID], nil
}

// PublishExportEvent publishes ev to topicName in projectID and waits for the
// server-assigned message ID.
func PublishExportEvent(ctx context.Context, projectID, topicName string, ev ExportEvent) (string, error) {
	if topicName == "" {
		return "", errors.New("export topic is required")
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return "", err
	}
	client, err := getPubSubClient(ctx, projectID)
	if err != nil {
		return "", err
	}
	result := client.Topic(topicName).Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: ev.Attributes(),
	})
	return result.Get(ctx)
}
