package httpserver

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/cineadmin/internal/catalog"
	"github.com/Clark-Hu/cineadmin/internal/client"
	"github.com/Clark-Hu/cineadmin/internal/domain"
	"github.com/Clark-Hu/cineadmin/internal/logging"
	"github.com/Clark-Hu/cineadmin/internal/repository"
)

type remoteActor struct {
	client  *client.HTTPClient
	catalog *catalog.Service
	actor   catalog.Actor
}

func newRemoteActor(t *testing.T, baseURL, email string, role domain.Role) *remoteActor {
	t.Helper()
	ctx := context.Background()
	c, err := client.New(client.Options{BaseURL: baseURL, Timeout: 5 * time.Second, Logger: logging.Discard()})
	require.NoError(t, err)
	_, err = c.Signup(ctx, email, "secret1", role)
	require.NoError(t, err)

	svc := catalog.New(c, catalog.Options{Logger: logging.Discard()})
	return &remoteActor{client: c, catalog: svc, actor: svc.ResolveSession(ctx)}
}

func TestCatalogOverHTTP(t *testing.T) {
	srv := buildTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	ctx := context.Background()

	admin := newRemoteActor(t, ts.URL, "admin@example.com", domain.RoleAdmin)
	user := newRemoteActor(t, ts.URL, "user@example.com", domain.RoleUser)
	require.True(t, admin.actor.Caps.CanModerate)
	require.True(t, user.actor.Caps.CanLike)
	require.False(t, user.actor.Caps.CanModerate)

	alien, err := admin.catalog.CreateMovie(ctx, admin.actor, domain.MovieFields{Title: "Alien", Genre: "Sci-Fi", Year: 1979})
	require.NoError(t, err)
	heat, err := admin.catalog.CreateMovie(ctx, admin.actor, domain.MovieFields{Title: "Heat", Genre: "Crime", Year: 1995})
	require.NoError(t, err)

	view, err := user.catalog.Load(ctx, user.actor)
	require.NoError(t, err)
	require.Len(t, view.Movies, 2)
	assert.Empty(t, view.Liked)

	liked, err := user.catalog.ToggleLike(ctx, user.actor, alien.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	liked, err = user.catalog.ToggleLike(ctx, user.actor, heat.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	liked, err = user.catalog.ToggleLike(ctx, user.actor, heat.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	_, err = user.catalog.CreateMovie(ctx, user.actor, domain.MovieFields{Title: "Nope", Year: 2000})
	assert.ErrorIs(t, err, catalog.ErrPermissionDenied)

	// an admin deleting a liked movie removes every like on it
	require.NoError(t, admin.catalog.DeleteMovie(ctx, admin.actor, alien.ID))
	likes, err := srv.repo.Likes.List(ctx, repository.LikeFilter{MovieID: &alien.ID})
	require.NoError(t, err)
	assert.Empty(t, likes)

	view, err = user.catalog.Load(ctx, user.actor)
	require.NoError(t, err)
	require.Len(t, view.Movies, 1)
	assert.Equal(t, heat.ID, view.Movies[0].ID)
	assert.Empty(t, view.Liked)

	// a guest sees the catalog but cannot like
	guest := catalog.New(mustAnonymousClient(t, ts.URL), catalog.Options{Logger: logging.Discard()})
	guestActor := guest.ResolveSession(ctx)
	assert.False(t, guestActor.Authenticated())
	view, err = guest.Load(ctx, guestActor)
	require.NoError(t, err)
	assert.Len(t, view.Movies, 1)
	liked, err = guest.ToggleLike(ctx, guestActor, heat.ID)
	require.NoError(t, err)
	assert.False(t, liked)
}

func mustAnonymousClient(t *testing.T, baseURL string) *client.HTTPClient {
	t.Helper()
	c, err := client.New(client.Options{BaseURL: baseURL, Logger: logging.Discard()})
	require.NoError(t, err)
	return c
}
