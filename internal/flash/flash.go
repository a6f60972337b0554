package flash

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Attributes 是一次性读取的属性，值保持为 JSON 原文，由调用方按需解码
type Attributes map[string]json.RawMessage

// Decode 把名为 name 的属性解码到 v 中，属性不存在时返回 false
func (a Attributes) Decode(name string, v any) (bool, error) {
	raw, ok := a[name]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, err
	}
	return true, nil
}

// Store 按人员和目标路径保存属性，只有目标页面的请求才会取走它们
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{
		client: client,
		ttl:    ttl,
	}
}

func (s *Store) key(personID int64, target string) string {
	return fmt.Sprintf("flash_%d_%s", personID, target)
}

// Add 写入一个发往 target 的属性，同名属性以最后一次写入为准
func (s *Store) Add(ctx context.Context, personID int64, target string, name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	key := s.key(personID, target)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, name, data)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	return err
}

// Pop 读取并删除发往 target 的全部属性，其他目标的属性不受影响
func (s *Store) Pop(ctx context.Context, personID int64, target string) (Attributes, error) {
	key := s.key(personID, target)

	var hgetall *redis.MapStringStringCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		hgetall = pipe.HGetAll(ctx, key)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, err
	}

	attributes := make(Attributes)
	for name, raw := range hgetall.Val() {
		attributes[name] = json.RawMessage(raw)
	}

	return attributes, nil
}
