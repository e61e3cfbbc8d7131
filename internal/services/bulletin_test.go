package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exit_poll/internal/services"
)

func TestNews(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.AddNews(ctx, services.NewsInput{Title: "only title"})
	require.True(t, services.IsKind(err, services.KindInvalidArgument))

	first, err := e.svc.AddNews(ctx, services.NewsInput{Title: "T1", Headline: "H1"})
	require.NoError(t, err)
	e.clock.Advance(time.Minute)
	second, err := e.svc.AddNews(ctx, services.NewsInput{Title: "T2", Headline: "H2", Description: "D"})
	require.NoError(t, err)

	items, err := e.svc.ListNews(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID)
	assert.Equal(t, first.ID, items[1].ID)

	require.NoError(t, e.svc.DeleteNews(ctx, first.ID))
	assert.True(t, services.IsKind(e.svc.DeleteNews(ctx, first.ID), services.KindNotFound))
}

func TestMediaIsAKeyedSingleton(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	empty, err := e.svc.GetMedia(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.PhotoURL)

	_, err = e.svc.UploadMedia(ctx, services.MediaUpload{})
	require.True(t, services.IsKind(err, services.KindInvalidArgument))

	first, err := e.svc.UploadMedia(ctx, services.MediaUpload{Photo: e.image(t, "home.png")})
	require.NoError(t, err)
	require.NotEmpty(t, first.PhotoURL)
	assert.Empty(t, first.VideoURL)

	video := &services.AssetRef{
		LocalPath:    e.image(t, "clip.mp4").LocalPath,
		OriginalName: "clip.mp4",
		ContentType:  "video/mp4",
	}
	second, err := e.svc.UploadMedia(ctx, services.MediaUpload{Video: video})
	require.NoError(t, err)
	assert.Equal(t, first.PhotoURL, second.PhotoURL)
	assert.NotEmpty(t, second.VideoURL)

	third, err := e.svc.UploadMedia(ctx, services.MediaUpload{Photo: e.image(t, "home2.png")})
	require.NoError(t, err)
	assert.NotEqual(t, first.PhotoURL, third.PhotoURL)
	assert.Equal(t, second.VideoURL, third.VideoURL)
	assert.False(t, e.store.Has(first.PhotoURL))
	assert.ElementsMatch(t, []string{third.PhotoURL, third.VideoURL}, e.store.Objects())
}

func TestMediaRejectsWrongTypes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	notVideo := e.image(t, "x.png")
	_, err := e.svc.UploadMedia(ctx, services.MediaUpload{Video: notVideo})
	assert.True(t, services.IsKind(err, services.KindInvalidArgument))
	assert.Empty(t, e.store.Objects())
}

func TestMediaRollsBackOnCancelledRequest(t *testing.T) {
	e := newEnv(t)
	first, err := e.svc.UploadMedia(context.Background(), services.MediaUpload{Photo: e.image(t, "home.png")})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	e.store.AfterUpload = func(n int) {
		if n == 3 {
			cancel()
		}
	}
	video := &services.AssetRef{
		LocalPath:    e.image(t, "clip.mp4").LocalPath,
		OriginalName: "clip.mp4",
		ContentType:  "video/mp4",
	}
	_, err = e.svc.UploadMedia(ctx, services.MediaUpload{Photo: e.image(t, "home2.png"), Video: video})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{first.PhotoURL}, e.store.Objects())

	got, err := e.svc.GetMedia(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.PhotoURL, got.PhotoURL)
	assert.Empty(t, got.VideoURL)
}
