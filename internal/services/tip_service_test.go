package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nyumba/internal/query"
)

func TestReadTime(t *testing.T) {
	assert.Equal(t, 1, ReadTime(""))
	assert.Equal(t, 1, ReadTime(strings.Repeat("word ", 200)))
	assert.Equal(t, 2, ReadTime(strings.Repeat("word ", 201)))
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short text", Excerpt("  short\n\ntext ", 160))
	got := Excerpt("the quick brown fox jumps over the lazy dog", 20)
	assert.Equal(t, "the quick brown fox...", got)
}

func TestCreateTipContentMinimum(t *testing.T) {
	f := newFixture(t)
	_, err := f.tips.Create(ctx(), TipInput{Title: ptr("Caring for teak"), Content: ptr(strings.Repeat("a", 99))})
	assert.EqualError(t, err, "Content must be at least 100 characters")

	tip, err := f.tips.Create(ctx(), TipInput{Title: ptr("Caring for teak"), Content: ptr(strings.Repeat("a", 100))})
	require.NoError(t, err)
	assert.Equal(t, "caring-for-teak", tip.Slug)
	assert.Equal(t, 1, tip.ReadTime)
	assert.NotEmpty(t, tip.Excerpt)
	assert.Nil(t, tip.PublishedAt)

	_, err = f.tips.Create(ctx(), TipInput{Title: ptr("Caring For Teak!"), Content: ptr(strings.Repeat("b", 100))})
	assert.EqualError(t, err, "Tip with slug caring-for-teak already exists")
}

func TestTipPublishedAtSetOnce(t *testing.T) {
	f := newFixture(t)
	body := strings.Repeat("Oil the wood twice a year. ", 10)
	tip, err := f.tips.Create(ctx(), TipInput{Title: ptr("Oiling"), Content: &body})
	require.NoError(t, err)

	tip, err = f.tips.Update(ctx(), tip.ID, TipInput{Published: ptr(true)})
	require.NoError(t, err)
	require.NotNil(t, tip.PublishedAt)
	first := *tip.PublishedAt

	tip, err = f.tips.Update(ctx(), tip.ID, TipInput{Published: ptr(false)})
	require.NoError(t, err)
	tip, err = f.tips.Update(ctx(), tip.ID, TipInput{Published: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, first, *tip.PublishedAt)

	got, err := f.tips.Get(ctx(), tip.ID)
	require.NoError(t, err)
	assert.Equal(t, first, *got.PublishedAt)
}

func TestTipReadCountsViewsAndHidesDrafts(t *testing.T) {
	f := newFixture(t)
	body := strings.Repeat("Keep rattan out of direct sun. ", 5)
	draft, err := f.tips.Create(ctx(), TipInput{Title: ptr("Draft"), Content: &body, Category: ptr("care")})
	require.NoError(t, err)
	_, err = f.tips.Create(ctx(), TipInput{Title: ptr("Rattan"), Content: &body, Category: ptr("outdoor"), Published: ptr(true)})
	require.NoError(t, err)

	_, err = f.tips.Read(ctx(), draft.Slug)
	assert.EqualError(t, err, "Tip not found")

	for want := 1; want <= 2; want++ {
		tip, err := f.tips.Read(ctx(), "rattan")
		require.NoError(t, err)
		assert.Equal(t, want, tip.Views)
	}

	page, err := f.tips.List(ctx(), query.Params{"published": "false"}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Meta.TotalCount, "public listing ignores published=false")
	assert.Equal(t, []string{"outdoor"}, page.Categories)

	page, err = f.tips.List(ctx(), query.Params{}, false)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Meta.TotalCount)
	assert.Nil(t, page.Categories)
}
