package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relief-grid-go/internal/db/dbtest"
	"relief-grid-go/internal/domain/access"
	"relief-grid-go/internal/domain/announcement"
	"relief-grid-go/internal/domain/area"
	announcementrepo "relief-grid-go/internal/repository/postgres/announcement"
	arearepo "relief-grid-go/internal/repository/postgres/area"
	"relief-grid-go/pkg/logger"
)

const seedYAML = `
areas:
  - name: Guangfu Township
    county: Hualien
    township: Guangfu
    center: {lat: 23.6691, lng: 121.4208}
  - name: Fenglin Township
    county: Hualien
    center: {lat: 23.7445, lng: 121.4503}
    bounds: {north: 23.76, south: 23.73, east: 121.47, west: 121.43}
announcements:
  - title: Bring your own boots
    content: Mud depth exceeds 30cm in most grids.
    category: safety
    pinned: true
    links:
      - url: https://example.org/safety
`

func TestSeedIsIdempotent(t *testing.T) {
	db := dbtest.Open(t)
	areas := area.NewService(arearepo.NewPostgres(db))
	announcements := announcement.NewService(announcementrepo.NewPostgres(db))
	seeder := New(areas, announcements, logger.NewNop())
	admin := access.Actor{ID: "admin-1", Role: access.RoleAdmin}
	ctx := context.Background()

	f, err := Decode(strings.NewReader(seedYAML))
	require.NoError(t, err)
	require.Len(t, f.Areas, 2)

	result, err := seeder.Apply(ctx, admin, f)
	require.NoError(t, err)
	assert.Equal(t, Result{AreasCreated: 2, AnnouncementsCreated: 1}, result)

	result, err = seeder.Apply(ctx, admin, f)
	require.NoError(t, err)
	assert.Equal(t, Result{AreasSkipped: 2, AnnouncementsSkipped: 1}, result)

	stored, err := areas.ListAreas(ctx, area.ListFilter{})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	for _, a := range stored {
		assert.True(t, a.Bounds().Bound().Contains(a.Center().Point()))
	}

	items, err := announcements.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Len(t, items[0].ExternalLinks, 1)
	assert.Equal(t, "example.org", items[0].ExternalLinks[0].Name)
}

func TestSeedRequiresAdmin(t *testing.T) {
	db := dbtest.Open(t)
	seeder := New(
		area.NewService(arearepo.NewPostgres(db)),
		announcement.NewService(announcementrepo.NewPostgres(db)),
		logger.NewNop(),
	)
	f := &File{Areas: []Area{{Name: "x", Center: Point{Lat: 23.6, Lng: 121.4}}}}

	_, err := seeder.Apply(context.Background(), access.Guest(), f)
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := Decode(strings.NewReader("areas:\n  - nme: typo\n"))
	assert.Error(t, err)

	f, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Areas)
}
