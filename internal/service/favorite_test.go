package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/movie-platform/internal/apperror"
)

func inception() FavoriteInput {
	return FavoriteInput{MovieID: 27205, Title: "Inception", Poster: "/p.jpg", ReleaseDate: "2010-07-16"}
}

func TestFavoriteAdd_TwiceYieldsOneRow(t *testing.T) {
	repo := &fakeFavoriteRepo{}
	svc := NewFavoriteService(repo, discardLogger())
	ctx := context.Background()

	first, err := svc.Add(ctx, "u1", inception())
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "u1", first.UserID)
	assert.Equal(t, int64(27205), first.MovieID)

	second, err := svc.Add(ctx, "u1", inception())
	require.NoError(t, err)
	assert.Nil(t, second)

	list, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestFavoriteAdd_Validation(t *testing.T) {
	svc := NewFavoriteService(&fakeFavoriteRepo{}, discardLogger())

	tests := []struct {
		name string
		in   FavoriteInput
	}{
		{"zero movie id", FavoriteInput{Title: "x"}},
		{"negative movie id", FavoriteInput{MovieID: -1, Title: "x"}},
		{"blank title", FavoriteInput{MovieID: 1, Title: "  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(context.Background(), "u1", tt.in)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}

func TestFavoriteList_ScopedAndNeverNil(t *testing.T) {
	repo := &fakeFavoriteRepo{}
	svc := NewFavoriteService(repo, discardLogger())
	ctx := context.Background()

	empty, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, empty)

	_, err = svc.Add(ctx, "u1", inception())
	require.NoError(t, err)
	_, err = svc.Add(ctx, "u2", FavoriteInput{MovieID: 603, Title: "The Matrix"})
	require.NoError(t, err)

	list, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Inception", list[0].Title)
}

func TestFavoriteRemove(t *testing.T) {
	repo := &fakeFavoriteRepo{}
	svc := NewFavoriteService(repo, discardLogger())
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", inception())
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, "u1", 27205))
	require.NoError(t, svc.Remove(ctx, "u1", 27205), "removing twice is fine")

	list, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFavorite_StoreErrorsPropagate(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewFavoriteService(&fakeFavoriteRepo{err: boom}, discardLogger())
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", inception())
	assert.ErrorIs(t, err, boom)
	_, err = svc.List(ctx, "u1")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, svc.Remove(ctx, "u1", 1), boom)
}
