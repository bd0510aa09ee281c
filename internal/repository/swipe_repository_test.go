package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/spark-core/internal/db"
	"github.com/oggyb/spark-core/internal/db/dbtest"
	"github.com/oggyb/spark-core/internal/repository"
)

func TestRecordOverwritesButKeepsHistory(t *testing.T) {
	ctx := context.Background()
	dbase := dbtest.New(t)
	repo := repository.NewSwipeRepository(dbase)

	// insert like
	require.NoError(t, repo.Record(ctx, 1, 2, db.ActionLike, false))
	// overwrite with pass
	require.NoError(t, repo.Record(ctx, 1, 2, db.ActionPass, false))

	action, err := repo.Current(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, db.ActionPass, action)

	var rows int64
	require.NoError(t, dbase.Model(&db.Swipe{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	history, err := repo.History(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, db.ActionLike, history[0].Action)
	assert.Equal(t, db.ActionPass, history[1].Action)
}

func TestHasLiked(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSwipeRepository(dbtest.New(t))

	liked, err := repo.HasLiked(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, liked)

	require.NoError(t, repo.Record(ctx, 1, 2, db.ActionLike, false))
	liked, err = repo.HasLiked(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, liked)

	// direction matters
	liked, err = repo.HasLiked(ctx, 2, 1)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestGetLikersExcludesPassed(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSwipeRepository(dbtest.New(t))

	// actors 1,2 liked target 99
	require.NoError(t, repo.Record(ctx, 1, 99, db.ActionLike, false))
	require.NoError(t, repo.Record(ctx, 2, 99, db.ActionLike, false))
	// target passed actor 2 → exclude
	require.NoError(t, repo.Record(ctx, 99, 2, db.ActionPass, false))

	swipes, next, err := repo.GetLikers(ctx, 99, false, nil, 10)
	require.NoError(t, err)
	assert.Nil(t, next)
	require.Len(t, swipes, 1)
	assert.Equal(t, uint64(1), swipes[0].ActorID)

	count, err := repo.CountLikers(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGetLikersExcludeMutual(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSwipeRepository(dbtest.New(t))

	// actor 1 liked 99, and 99 liked back → mutual
	require.NoError(t, repo.Record(ctx, 1, 99, db.ActionLike, false))
	require.NoError(t, repo.Record(ctx, 99, 1, db.ActionLike, false))
	// actor 2 liked 99, but not mutual
	require.NoError(t, repo.Record(ctx, 2, 99, db.ActionLike, false))

	swipes, _, err := repo.GetLikers(ctx, 99, true, nil, 10)
	require.NoError(t, err)
	require.Len(t, swipes, 1)
	assert.Equal(t, uint64(2), swipes[0].ActorID)
}

func TestGetLikersPagination(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSwipeRepository(dbtest.New(t))

	for actor := uint64(1); actor <= 5; actor++ {
		require.NoError(t, repo.Record(ctx, actor, 99, db.ActionLike, false))
	}

	seen := map[uint64]bool{}
	var token *string
	pages := 0
	for {
		swipes, next, err := repo.GetLikers(ctx, 99, false, token, 2)
		require.NoError(t, err)
		for _, s := range swipes {
			assert.False(t, seen[s.ActorID], "actor %d returned twice", s.ActorID)
			seen[s.ActorID] = true
		}
		pages++
		if next == nil {
			break
		}
		token = next
	}
	assert.Len(t, seen, 5)
	assert.Equal(t, 3, pages)
}
