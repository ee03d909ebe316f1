package chat_test

import (
	"context"
	"sync"
	"testing"

	"ms-canteen/internal/chat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := chat.NewMemoryStore()
	ctx := context.Background()

	got, err := store.Get(ctx, "919000000000")
	require.NoError(t, err)
	assert.Nil(t, got)

	session := chat.NewSession("919000000000")
	session.Stage = chat.StageCartReview
	require.NoError(t, store.Save(ctx, session))

	got, err = store.Get(ctx, "919000000000")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, chat.StageCartReview, got.Stage)

	require.NoError(t, store.Delete(ctx, "919000000000"))
	got, err = store.Get(ctx, "919000000000")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := chat.NewMemoryStore()
	ctx := context.Background()

	session := chat.NewSession("919000000000")
	require.NoError(t, store.Save(ctx, session))

	// Mutating the caller's copy must not leak into the store.
	session.Stage = chat.StageCartReview

	got, err := store.Get(ctx, "919000000000")
	require.NoError(t, err)
	assert.Equal(t, chat.StageMenuSelection, got.Stage)

	got.Stage = chat.StageDateSelection
	again, err := store.Get(ctx, "919000000000")
	require.NoError(t, err)
	assert.Equal(t, chat.StageMenuSelection, again.Stage)
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	store := chat.NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			phone := "91900000000" + string(rune('0'+n%10))
			_ = store.Save(ctx, chat.NewSession(phone))
			_, _ = store.Get(ctx, phone)
			_ = store.Delete(ctx, phone)
		}(i)
	}
	wg.Wait()
}
