// Package storage keeps one JSON record per user id. Records are opaque to
// the stores; Stamp adds the lastUpdated field before a save.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mmdatafocus/ghg_reports/utils"
)

// Store loads and saves whole user records. Load returns
// utils.ErrorRecordNotFound for an unknown user. Save overwrites.
type Store interface {
	Load(ctx context.Context, userId string) (json.RawMessage, error)
	Save(ctx context.Context, userId string, record json.RawMessage) error
	Close() error
}

// LastUpdatedField is stamped into every saved record.
const LastUpdatedField = "lastUpdated"

// TimestampLayout matches JavaScript's Date.toISOString.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

var ErrNotObject = errors.New("record must be a JSON object")

// Stamp returns body with lastUpdated set to now in UTC. body must be a JSON
// object; its other fields are kept verbatim.
func Stamp(body []byte, now time.Time) (json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, ErrNotObject
	}
	ts, err := json.Marshal(now.UTC().Format(TimestampLayout))
	if err != nil {
		return nil, err
	}
	fields[LastUpdatedField] = ts
	return json.Marshal(fields)
}

// LastUpdated reads the stamp back; ok is false when absent or unparsable.
func LastUpdated(record json.RawMessage) (time.Time, bool) {
	var v struct {
		LastUpdated string `json:"lastUpdated"`
	}
	if err := json.Unmarshal(record, &v); err != nil || v.LastUpdated == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, v.LastUpdated)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func checkUserId(userId string) error {
	if !utils.IsValidUserId(userId) {
		return fmt.Errorf("%q: %w", userId, utils.ErrorInvalidUserId)
	}
	return nil
}
