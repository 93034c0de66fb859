package storage

import (
	"context"
	"fmt"

	"github.com/mmdatafocus/ghg_reports/apiclient"
	"github.com/mmdatafocus/ghg_reports/config"
)

// Open builds the store named by s.StoreBackend. The redis and mysql backends
// connect through config, retrying until ctx is done.
func Open(ctx context.Context, s config.Settings) (Store, error) {
	switch s.StoreBackend {
	case "", config.StoreFile:
		return NewFileStore(s.DataFile)
	case config.StoreDiskv:
		return NewDiskvStore(s.DiskvPath, s.DiskvCacheBytes), nil
	case config.StoreRedis:
		if config.GetRedisDB() == nil {
			if err := config.ConnectRedisWithRetry(ctx, s.RedisAddress); err != nil {
				return nil, err
			}
		}
		return NewRedisStore(config.GetRedisDB(), s.RecordTTL), nil
	case config.StoreMySQL:
		if config.GetDB() == nil {
			if err := config.ConnectDatabaseWithRetry(ctx, s.MySQL); err != nil {
				return nil, err
			}
		}
		return NewMySQLStore(config.GetDB(), s.SkipMigrations)
	case config.StoreRemote:
		client, err := apiclient.New(s.RemoteBaseURL, s.RemoteTimeout)
		if err != nil {
			return nil, err
		}
		return NewRemoteStore(client), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", s.StoreBackend)
	}
}
