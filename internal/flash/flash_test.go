package flash

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewStore(client, 5*time.Minute), mr
}

func TestAddAndPop(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, 1, "/applications/new", "form", map[string]string{"reason": "搬家"}))
	require.NoError(t, store.Add(ctx, 1, "/applications/new", "errors", map[string]string{"endDate": "结束日期不能早于开始日期"}))

	attributes, err := store.Pop(ctx, 1, "/applications/new")
	require.NoError(t, err)
	require.Len(t, attributes, 2)

	var form map[string]string
	found, err := attributes.Decode("form", &form)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "搬家", form["reason"])

	var fieldErrors map[string]string
	found, err = attributes.Decode("errors", &fieldErrors)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "结束日期不能早于开始日期", fieldErrors["endDate"])
}

func TestPopRemovesAttributes(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, 1, "/sickdays", "message", "ok"))

	_, err := store.Pop(ctx, 1, "/sickdays")
	require.NoError(t, err)

	attributes, err := store.Pop(ctx, 1, "/sickdays")
	require.NoError(t, err)
	require.Empty(t, attributes)
}

func TestPopIsScopedToPerson(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, 1, "/sickdays", "message", "one"))

	attributes, err := store.Pop(ctx, 2, "/sickdays")
	require.NoError(t, err)
	require.Empty(t, attributes)

	attributes, err = store.Pop(ctx, 1, "/sickdays")
	require.NoError(t, err)
	found, err := attributes.Decode("missing", new(string))
	require.NoError(t, err)
	require.False(t, found)
}

func TestPopIsScopedToTarget(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, 1, "/applications/new", "errors", map[string]string{"startDate": "必填"}))
	require.NoError(t, store.Add(ctx, 1, "/sickdays", "filterPeriodIncorrect", true))

	attributes, err := store.Pop(ctx, 1, "/sickdays")
	require.NoError(t, err)
	require.Len(t, attributes, 1)

	// 读取其他页面的属性不会影响申请表单的属性
	attributes, err = store.Pop(ctx, 1, "/applications/new")
	require.NoError(t, err)
	var fieldErrors map[string]string
	found, err := attributes.Decode("errors", &fieldErrors)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "必填", fieldErrors["startDate"])
}

func TestLastWriteWins(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, 1, "/sickdays", "message", "first"))
	require.NoError(t, store.Add(ctx, 1, "/sickdays", "message", "second"))

	attributes, err := store.Pop(ctx, 1, "/sickdays")
	require.NoError(t, err)

	var message string
	_, err = attributes.Decode("message", &message)
	require.NoError(t, err)
	require.Equal(t, "second", message)
}

func TestAttributesExpire(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, 1, "/sickdays", "message", "soon gone"))
	mr.FastForward(6 * time.Minute)

	attributes, err := store.Pop(ctx, 1, "/sickdays")
	require.NoError(t, err)
	require.Empty(t, attributes)
}
