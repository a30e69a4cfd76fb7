package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookreviews/internal/testutil"
)

func TestPostgresRepo_DeleteByTokenHashOnlyOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewPostgresRepo(db, 5*time.Second)
	ctx := context.Background()

	suffix := testutil.UniqueSuffix()
	var userID string
	require.NoError(t, db.QueryRow(ctx,
		"INSERT INTO users (username, password_hash) VALUES ($1, 'x') RETURNING id", "sess"+suffix,
	).Scan(&userID))
	t.Cleanup(func() { _, _ = db.Exec(ctx, "DELETE FROM users WHERE id = $1", userID) })

	sum := sha256.Sum256([]byte(suffix))
	hash := hex.EncodeToString(sum[:])
	require.NoError(t, repo.Create(ctx, &Session{
		UserID:           userID,
		RefreshTokenHash: hash,
		ExpiresAt:        time.Now().Add(time.Hour),
	}))

	require.NoError(t, repo.DeleteByTokenHash(ctx, hash))
	assert.ErrorIs(t, repo.DeleteByTokenHash(ctx, hash), ErrNotFound)
}
