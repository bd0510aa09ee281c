package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oggyb/spark-core/internal/db"
	"github.com/oggyb/spark-core/internal/db/dbtest"
	"github.com/oggyb/spark-core/internal/logger"
)

func TestSeedTestData(t *testing.T) {
	gdb := dbtest.New(t)
	opts := db.SeedOptions{Users: 6, Points: 30, Reset: true, RandSeed: 42}

	require.NoError(t, db.SeedTestData(gdb, opts, logger.Discard()))
	// a second run with reset starts over
	require.NoError(t, db.SeedTestData(gdb, opts, logger.Discard()))

	var users []db.User
	require.NoError(t, gdb.Find(&users).Error)
	require.Len(t, users, 6)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].PasswordHash), []byte("password")))

	for _, u := range users {
		var bal db.LedgerBalance
		require.NoError(t, gdb.First(&bal, "user_id = ?", u.ID).Error)
		var sum int64
		require.NoError(t, gdb.Model(&db.LedgerEntry{}).Where("user_id = ?", u.ID).
			Select("COALESCE(SUM(delta), 0)").Scan(&sum).Error)
		assert.Equal(t, int64(30), bal.Balance)
		assert.Equal(t, bal.Balance, sum, "user %d", u.ID)
	}

	var matches []db.Match
	require.NoError(t, gdb.Find(&matches).Error)
	require.NotEmpty(t, matches)
	for _, m := range matches {
		assert.Less(t, m.UserLowID, m.UserHighID)
		var conv db.Conversation
		require.NoError(t, gdb.First(&conv, m.ConversationID).Error)
		assert.Equal(t, db.KindMatch, conv.Kind)
		assert.Equal(t, m.UserLowID, conv.UserLowID)
		assert.Equal(t, m.UserHighID, conv.UserHighID)
	}
}

func TestSeedTestDataRejectsTinyDataset(t *testing.T) {
	gdb := dbtest.New(t)
	err := db.SeedTestData(gdb, db.SeedOptions{Users: 1}, logger.Discard())
	assert.Error(t, err)
}
