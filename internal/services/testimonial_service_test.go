package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nyumba/internal/domain"
	"nyumba/internal/query"
)

func TestTestimonialRatingBounds(t *testing.T) {
	f := newFixture(t)
	in := TestimonialInput{Name: ptr("Baraka"), Text: ptr("Lovely chairs"), Rating: ptr(6)}
	_, err := f.reviews.Create(ctx(), in)
	assert.EqualError(t, err, "Rating must be between 1 and 5")

	in.Rating = ptr(0)
	_, err = f.reviews.Create(ctx(), in)
	assert.EqualError(t, err, "Rating must be between 1 and 5")

	in.Rating = ptr(5)
	got, err := f.reviews.Create(ctx(), in)
	require.NoError(t, err)
	assert.Equal(t, domain.TestimonialPending, got.Status)
}

func TestTestimonialModeration(t *testing.T) {
	f := newFixture(t)
	got, err := f.reviews.Create(ctx(), TestimonialInput{Name: ptr("Baraka"), Text: ptr("Lovely chairs"), Rating: ptr(4)})
	require.NoError(t, err)

	_, meta, err := f.reviews.List(ctx(), query.Params{"status": "approved"})
	require.NoError(t, err)
	assert.Equal(t, 3, meta.TotalCount)

	_, err = f.reviews.Update(ctx(), got.ID, TestimonialInput{Status: ptr("published")})
	assert.EqualError(t, err, "Invalid status: published")

	_, err = f.reviews.Update(ctx(), got.ID, TestimonialInput{Status: ptr("Approved")})
	require.NoError(t, err)
	_, meta, err = f.reviews.List(ctx(), query.Params{"status": "approved"})
	require.NoError(t, err)
	assert.Equal(t, 4, meta.TotalCount)

	_, meta, err = f.reviews.List(ctx(), query.Params{"rating": "5"})
	require.NoError(t, err)
	assert.Equal(t, 2, meta.TotalCount)

	require.NoError(t, f.reviews.Delete(ctx(), got.ID))
	assert.EqualError(t, f.reviews.Delete(ctx(), got.ID), "Testimonial not found")
}
