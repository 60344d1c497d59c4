package books

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readtrack/internal/database/dbtest"
	"github.com/mrlokans/readtrack/internal/entities"
)

func TestRepository_CreateBook(t *testing.T) {
	repo := NewRepository(dbtest.New(t).DB)
	ctx := context.Background()

	book := &entities.Book{Title: "The Final Empire", Author: "Brandon Sanderson", Description: "Mistborn Book 1"}
	require.NoError(t, repo.CreateBook(ctx, book))
	assert.NotZero(t, book.ID)

	var loaded entities.Book
	require.NoError(t, repo.db.First(&loaded, book.ID).Error)
	assert.Equal(t, "The Final Empire", loaded.Title)
	assert.Equal(t, "Brandon Sanderson", loaded.Author)
	assert.Equal(t, "Mistborn Book 1", loaded.Description)
}

func TestRepository_CreateBook_NoDeduplication(t *testing.T) {
	repo := NewRepository(dbtest.New(t).DB)
	ctx := context.Background()

	first := &entities.Book{Title: "T", Author: "A", Description: "D"}
	second := &entities.Book{Title: "T", Author: "A", Description: "D"}
	require.NoError(t, repo.CreateBook(ctx, first))
	require.NoError(t, repo.CreateBook(ctx, second))

	assert.NotEqual(t, first.ID, second.ID)
	var count int64
	require.NoError(t, repo.db.Model(&entities.Book{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}
