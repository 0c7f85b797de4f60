package attribution

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subpulse/pkg/contracts/domain"
)

func ts(t *testing.T, value string) *time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04:05", value)
	require.NoError(t, err)
	return &parsed
}

func publishedPost(t *testing.T, id, title, date string) domain.Post {
	t.Helper()
	return domain.Post{
		ID:        id,
		Title:     title,
		Date:      ts(t, date),
		Published: true,
	}
}

func freeSubscriber(t *testing.T, email, createdAt string) domain.Subscriber {
	t.Helper()
	sub := domain.Subscriber{Email: email, Plan: domain.PlanFree, ActiveSubscription: true}
	if createdAt != "" {
		sub.CreatedAt = ts(t, createdAt)
	}
	return sub
}

func TestEngineRun_MostRecentQualifyingPostWins(t *testing.T) {
	posts := []domain.Post{
		publishedPost(t, "1", "First Post", "2024-01-01 00:00:00"),
		publishedPost(t, "2", "Second Post", "2024-01-05 00:00:00"),
	}
	subs := []domain.Subscriber{
		freeSubscriber(t, "a@example.com", "2024-01-06 00:00:00"),
	}

	result := NewEngine(nil).Run(context.Background(), posts, subs, 7)

	require.Len(t, result.PostAttributions, 1)
	attr := result.PostAttributions[0]
	assert.Equal(t, "2", attr.PostID)
	assert.Equal(t, "2024-01-05", attr.PostDate)
	assert.Equal(t, 1, attr.AttributedTotal)
	assert.Equal(t, 0, attr.AttributedPaid)
	assert.Equal(t, 1, attr.AttributedFree)
	assert.Equal(t, 1.0, attr.AvgDaysToSignup)
	assert.Equal(t, 1, result.TotalAttributed)
	assert.Equal(t, 0, result.OrganicSignups)
}

func TestEngineRun_OutsideWindowIsOrganic(t *testing.T) {
	posts := []domain.Post{
		publishedPost(t, "1", "First Post", "2024-01-01 00:00:00"),
		publishedPost(t, "2", "Second Post", "2024-01-05 00:00:00"),
	}
	subs := []domain.Subscriber{
		freeSubscriber(t, "late@example.com", "2024-01-15 00:00:00"),
	}

	result := NewEngine(nil).Run(context.Background(), posts, subs, 7)

	assert.Empty(t, result.PostAttributions)
	assert.Equal(t, 1, result.OrganicSignups)
	assert.Equal(t, 0, result.TotalAttributed)
}

func TestEngineRun_WindowBoundaryInclusive(t *testing.T) {
	posts := []domain.Post{
		publishedPost(t, "1", "Boundary Post", "2024-01-01 00:00:00"),
	}
	subs := []domain.Subscriber{
		// Exactly 7*24h after publication still qualifies.
		freeSubscriber(t, "edge@example.com", "2024-01-08 00:00:00"),
	}

	result := NewEngine(nil).Run(context.Background(), posts, subs, 7)

	require.Len(t, result.PostAttributions, 1)
	assert.Equal(t, "1", result.PostAttributions[0].PostID)
	assert.Equal(t, 7.0, result.PostAttributions[0].AvgDaysToSignup)
}

func TestEngineRun_PostAfterSignupNeverMatches(t *testing.T) {
	posts := []domain.Post{
		publishedPost(t, "1", "Future Post", "2024-02-01 00:00:00"),
	}
	subs := []domain.Subscriber{
		freeSubscriber(t, "early@example.com", "2024-01-15 00:00:00"),
	}

	result := NewEngine(nil).Run(context.Background(), posts, subs, 30)

	assert.Empty(t, result.PostAttributions)
	assert.Equal(t, 1, result.OrganicSignups)
}

func TestEngineRun_SkipsSubscribersWithoutCreatedAt(t *testing.T) {
	posts := []domain.Post{
		publishedPost(t, "1", "Only Post", "2024-01-01 00:00:00"),
	}
	subs := []domain.Subscriber{
		freeSubscriber(t, "dated@example.com", "2024-01-02 00:00:00"),
		freeSubscriber(t, "undated@example.com", ""),
	}

	result := NewEngine(nil).Run(context.Background(), posts, subs, 7)

	assert.Equal(t, 1, result.TotalAttributed)
	assert.Equal(t, 1, result.SkippedNoCreatedAt)
	assert.Equal(t, 0, result.OrganicSignups)
}

func TestEngineRun_IgnoresUnpublishedAndUndatedPosts(t *testing.T) {
	draft := publishedPost(t, "1", "Draft", "2024-01-05 00:00:00")
	draft.Published = false
	undated := domain.Post{ID: "2", Title: "Undated", Published: true}

	posts := []domain.Post{
		draft,
		undated,
		publishedPost(t, "3", "Live", "2024-01-01 00:00:00"),
	}
	subs := []domain.Subscriber{
		freeSubscriber(t, "a@example.com", "2024-01-06 00:00:00"),
	}

	result := NewEngine(nil).Run(context.Background(), posts, subs, 7)

	require.Len(t, result.PostAttributions, 1)
	assert.Equal(t, "3", result.PostAttributions[0].PostID)
}

func TestEngineRun_PaidFreeSplitAndCoverage(t *testing.T) {
	posts := []domain.Post{
		publishedPost(t, "1", "Launch", "2024-01-01 00:00:00"),
	}

	subs := make([]domain.Subscriber, 0, 100)
	for i := 0; i < 40; i++ {
		sub := freeSubscriber(t, "in@example.com", "2024-01-03 00:00:00")
		if i < 15 {
			sub.Plan = domain.PlanMonthly
			sub.FirstPaymentAt = ts(t, "2024-01-04 00:00:00")
		}
		subs = append(subs, sub)
	}
	for i := 0; i < 60; i++ {
		subs = append(subs, freeSubscriber(t, "out@example.com", "2024-03-01 00:00:00"))
	}

	result := NewEngine(nil).Run(context.Background(), posts, subs, 7)

	require.Len(t, result.PostAttributions, 1)
	attr := result.PostAttributions[0]
	assert.Equal(t, 40, attr.AttributedTotal)
	assert.Equal(t, 15, attr.AttributedPaid)
	assert.Equal(t, 25, attr.AttributedFree)
	assert.Equal(t, 40, result.TotalAttributed)
	assert.Equal(t, 60, result.OrganicSignups)
	assert.Equal(t, 40.0, result.AttributionCoverage)
}

func TestEngineRun_AvgDaysUsesWholeDaysAndRounds(t *testing.T) {
	posts := []domain.Post{
		publishedPost(t, "1", "Post", "2024-01-01 00:00:00"),
	}
	subs := []domain.Subscriber{
		// 1 day 18h elapsed floors to 1 whole day.
		freeSubscriber(t, "a@example.com", "2024-01-02 18:00:00"),
		freeSubscriber(t, "b@example.com", "2024-01-03 06:00:00"),
		freeSubscriber(t, "c@example.com", "2024-01-05 00:00:00"),
	}

	result := NewEngine(nil).Run(context.Background(), posts, subs, 7)

	require.Len(t, result.PostAttributions, 1)
	// (1 + 2 + 4) / 3 = 2.333... -> 2.3
	assert.Equal(t, 2.3, result.PostAttributions[0].AvgDaysToSignup)
}

func TestEngineRun_RankedByAttributedTotal(t *testing.T) {
	posts := []domain.Post{
		publishedPost(t, "1", "Quiet Post", "2024-01-01 00:00:00"),
		publishedPost(t, "2", "Viral Post", "2024-02-01 00:00:00"),
	}

	var subs []domain.Subscriber
	subs = append(subs, freeSubscriber(t, "jan@example.com", "2024-01-02 00:00:00"))
	for i := 0; i < 3; i++ {
		subs = append(subs, freeSubscriber(t, "feb@example.com", "2024-02-02 00:00:00"))
	}

	result := NewEngine(nil).Run(context.Background(), posts, subs, 7)

	require.Len(t, result.PostAttributions, 2)
	assert.Equal(t, "2", result.PostAttributions[0].PostID)
	assert.Equal(t, 3, result.PostAttributions[0].AttributedTotal)
	assert.Equal(t, "1", result.PostAttributions[1].PostID)
}

func TestEngineRun_EmptyInputs(t *testing.T) {
	result := NewEngine(nil).Run(context.Background(), nil, nil, 7)

	assert.Equal(t, 7, result.WindowDays)
	assert.NotNil(t, result.PostAttributions)
	assert.Empty(t, result.PostAttributions)
	assert.Equal(t, 0.0, result.AttributionCoverage)
}

func TestEngineRunAll_PreservesWindowOrder(t *testing.T) {
	posts := []domain.Post{
		publishedPost(t, "1", "Post", "2024-01-01 00:00:00"),
	}
	subs := []domain.Subscriber{
		freeSubscriber(t, "a@example.com", "2024-01-03 00:00:00"),
		freeSubscriber(t, "b@example.com", "2024-01-06 00:00:00"),
	}

	results, err := NewEngine(nil).RunAll(context.Background(), posts, subs, []int{1, 2, 7})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, 1, results[0].WindowDays)
	assert.Equal(t, 2, results[1].WindowDays)
	assert.Equal(t, 7, results[2].WindowDays)

	// Only the 7-day window catches both signups; narrower windows catch
	// neither or are independent of it.
	assert.Equal(t, 0, results[0].TotalAttributed)
	assert.Equal(t, 1, results[1].TotalAttributed)
	assert.Equal(t, 2, results[2].TotalAttributed)
}
