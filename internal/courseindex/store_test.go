package courseindex

import (
	"context"
	"testing"
	"time"

	"sikola-tools/internal/components/chrono"
	"sikola-tools/internal/sikola"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var _ sikola.CourseRecorder = Store{}

func TestStore(t *testing.T) {
	wita := time.FixedZone("WITA", 8*60*60)
	monday := time.Date(2024, 8, 19, 9, 0, 0, 0, wita)

	store, err := Open(":memory:", chrono.FixedImpl{Time: monday})
	require.NoError(t, err)
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	{
		res, err := store.Find(ctx, "basis")
		require.NoError(t, err)
		require.Len(t, res, 0)
	}

	err = store.Record(ctx, []sikola.CourseRef{
		{Title: "Basis Data C", Href: "https://sikola.unhas.ac.id/session/1/about/", Page: 2, PageUrl: "p2"},
		{Title: "Struktur Data B", Href: "https://sikola.unhas.ac.id/session/2/about/", Page: 2, PageUrl: "p2"},
		{Title: "Basis Data Lanjut A", Href: "https://sikola.unhas.ac.id/session/3/about/", Page: 3, PageUrl: "p3"},
	})
	require.NoError(t, err)

	tuesday := monday.Add(time.Hour * 24)
	store.clock = chrono.FixedImpl{Time: tuesday}
	err = store.Record(ctx, []sikola.CourseRef{
		{Title: "Basis Data C", Href: "https://sikola.unhas.ac.id/session/9/about/", Page: 2, PageUrl: "p2"},
	})
	require.NoError(t, err)

	res, err := store.Find(ctx, "BASIS")
	require.NoError(t, err)

	expected := []Entry{
		{
			CourseRef: sikola.CourseRef{Title: "Basis Data C", Href: "https://sikola.unhas.ac.id/session/9/about/", Page: 2, PageUrl: "p2"},
			SeenAt:    tuesday,
		},
		{
			CourseRef: sikola.CourseRef{Title: "Basis Data Lanjut A", Href: "https://sikola.unhas.ac.id/session/3/about/", Page: 3, PageUrl: "p3"},
			SeenAt:    monday,
		},
	}
	if diff := cmp.Diff(expected, res); diff != "" {
		t.Fatal("unexpected entries (-want +got):\n", diff)
	}

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "Struktur Data B", all[1].Title)
}
