package kv_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-assessment/internal/db"
	"github.com/mind-engage/mindengage-assessment/internal/kv"
)

func openSQLite(t *testing.T, name string) kv.Store {
	t.Helper()
	dbh, err := db.Open(context.Background(), db.DriverSQLite, "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbh.Close() })
	return kv.NewSQLStore(dbh)
}

func openRedis(t *testing.T) kv.Store {
	t.Helper()
	srv := miniredis.RunT(t)
	client, err := kv.DialRedis(context.Background(), srv.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return kv.NewRedisStore(client, "assessment:")
}

func TestStores(t *testing.T) {
	stores := map[string]kv.Store{
		"memory": kv.NewMemoryStore(),
		"sqlite": openSQLite(t, "kv_stores"),
		"redis":  openRedis(t),
	}
	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Get(ctx, "bank:c1")
			assert.ErrorIs(t, err, kv.ErrNotFound)

			require.NoError(t, s.Set(ctx, "bank:c1", []byte(`[1]`)))
			require.NoError(t, s.Set(ctx, "bank:c1", []byte(`[1,2]`)))
			b, err := s.Get(ctx, "bank:c1")
			require.NoError(t, err)
			assert.Equal(t, `[1,2]`, string(b))

			require.NoError(t, s.Remove(ctx, "bank:c1"))
			_, err = s.Get(ctx, "bank:c1")
			assert.ErrorIs(t, err, kv.ErrNotFound)

			assert.NoError(t, s.Remove(ctx, "bank:absent"))
		})
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := kv.NewMemoryStore()

	var got []string
	found, err := kv.GetJSON(ctx, s, kv.GradesKey("c1"), &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, kv.SetJSON(ctx, s, kv.GradesKey("c1"), []string{"a", "b"}))
	found, err = kv.GetJSON(ctx, s, kv.GradesKey("c1"), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"a", "b"}, got)

	require.NoError(t, s.Set(ctx, kv.GradesKey("c2"), []byte("{not json")))
	_, err = kv.GetJSON(ctx, s, kv.GradesKey("c2"), &got)
	assert.Error(t, err)
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	s := kv.NewMemoryStore()
	doc := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", doc))
	doc[0] = 'x'

	b, err := s.Get(ctx, "k")
	require.NoError(t, err)
	b[1] = 'y'

	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "bank:c1", kv.BankKey("c1"))
	assert.Equal(t, "instance:q1", kv.InstanceKey("q1"))
	assert.Equal(t, "grades:c1", kv.GradesKey("c1"))
}

func TestRedisStorePrefixesKeys(t *testing.T) {
	ctx := context.Background()
	srv := miniredis.RunT(t)
	client, err := kv.DialRedis(ctx, srv.Addr(), "", 0)
	require.NoError(t, err)
	defer client.Close()

	s := kv.NewRedisStore(client, "assessment:")
	require.NoError(t, s.Set(ctx, kv.BankKey("c1"), []byte(`[]`)))
	assert.True(t, srv.Exists("assessment:bank:c1"))
	assert.False(t, srv.Exists("bank:c1"))

	srv.Close()
	_, err = s.Get(ctx, kv.BankKey("c1"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, kv.ErrNotFound)
}

func TestDialRedisFailsWithoutServer(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()
	_, err := kv.DialRedis(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
