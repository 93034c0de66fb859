package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/peterbourgon/diskv/v3"

	"github.com/mmdatafocus/ghg_reports/utils"
)

// DiskvStore writes one file per user under basePath, sharded by the first
// two characters of the id.
type DiskvStore struct {
	d *diskv.Diskv
}

func NewDiskvStore(basePath string, cacheBytes uint64) *DiskvStore {
	return &DiskvStore{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: userKeyTransform,
		InverseTransform:  pathToUserKey,
		CacheSizeMax:      cacheBytes,
	})}
}

func (s *DiskvStore) Load(ctx context.Context, userId string) (json.RawMessage, error) {
	if err := checkUserId(userId); err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	val, err := s.d.Read(userId)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return json.RawMessage(val), nil
}

func (s *DiskvStore) Save(ctx context.Context, userId string, record json.RawMessage) error {
	if err := checkUserId(userId); err != nil {
		return err
	}
	return s.d.Write(userId, record)
}

func (s *DiskvStore) Close() error { return nil }

// Keys returns every stored user id.
func (s *DiskvStore) Keys(ctx context.Context) []string {
	var keys []string
	for k := range s.d.Keys(ctx.Done()) {
		keys = append(keys, k)
	}
	return keys
}

func userKeyTransform(key string) *diskv.PathKey {
	shard := key
	if len(shard) > 2 {
		shard = shard[:2]
	}
	return &diskv.PathKey{
		Path:     []string{shard},
		FileName: key + ".json",
	}
}

func pathToUserKey(pk *diskv.PathKey) string {
	name := pk.FileName
	if len(name) > len(".json") && name[len(name)-len(".json"):] == ".json" {
		return name[:len(name)-len(".json")]
	}
	return name
}
