package storage

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mmdatafocus/ghg_reports/apiclient"
	"github.com/mmdatafocus/ghg_reports/utils"
)

// RemoteStore forwards to another persistence service over HTTP.
type RemoteStore struct {
	client *apiclient.Client
}

func NewRemoteStore(client *apiclient.Client) *RemoteStore {
	return &RemoteStore{client: client}
}

func (s *RemoteStore) Load(ctx context.Context, userId string) (json.RawMessage, error) {
	rec, err := s.client.Load(ctx, userId)
	if errors.Is(err, apiclient.ErrNoData) {
		return nil, utils.ErrorRecordNotFound
	}
	return rec, err
}

func (s *RemoteStore) Save(ctx context.Context, userId string, record json.RawMessage) error {
	if err := checkUserId(userId); err != nil {
		return err
	}
	return s.client.Save(ctx, userId, record)
}

func (s *RemoteStore) Close() error { return nil }
