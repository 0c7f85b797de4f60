package dataprocessing

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subpulse/pkg/contracts/domain"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParsePosts_Normalization(t *testing.T) {
	path := writeCSV(t, "posts.csv",
		"post_id,post_date,is_published,type,audience,title,subtitle\n"+
			"101.launch-week.v2,2024-01-05 09:00:00,true,,,Launch Week,Sub\n")

	posts, err := NewParser(nil).ParsePosts(path)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	post := posts[0]
	// Compound id splits on the first dot only; the slug keeps later dots.
	assert.Equal(t, "101", post.ID)
	assert.Equal(t, "launch-week.v2", post.Slug)
	assert.True(t, post.Published)
	assert.Equal(t, domain.DefaultPostType, post.Type)
	assert.Equal(t, domain.AudienceEveryone, post.Audience)
	require.NotNil(t, post.Date)
	assert.Equal(t, 2024, post.Date.Year())
}

func TestParsePosts_StrictBooleans(t *testing.T) {
	path := writeCSV(t, "posts.csv",
		"post_id,post_date,is_published,title\n"+
			"1,2024-01-01,true,A\n"+
			"2,2024-01-02,TRUE,B\n"+
			"3,2024-01-03,True,C\n"+
			"4,2024-01-04,1,D\n"+
			"5,2024-01-05,,E\n")

	posts, err := NewParser(nil).ParsePosts(path)
	require.NoError(t, err)
	require.Len(t, posts, 5)

	// Only the exact lowercase literal parses as true.
	assert.True(t, posts[0].Published)
	for _, post := range posts[1:] {
		assert.False(t, post.Published, "post %s", post.ID)
	}
}

func TestParsePosts_UnparsableDateBecomesNil(t *testing.T) {
	path := writeCSV(t, "posts.csv",
		"post_id,post_date,is_published,title\n"+
			"1,not-a-date,true,A\n")

	posts, err := NewParser(nil).ParsePosts(path)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Nil(t, posts[0].Date)
}

func TestParsePosts_DuplicateIDKeepsFirst(t *testing.T) {
	path := writeCSV(t, "posts.csv",
		"post_id,post_date,is_published,title\n"+
			"1.first,2024-01-01,true,First\n"+
			"1.second,2024-01-02,true,Second\n")

	posts, err := NewParser(nil).ParsePosts(path)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "First", posts[0].Title)
}

func TestParsePosts_RowWithoutIDSkipped(t *testing.T) {
	path := writeCSV(t, "posts.csv",
		"post_id,post_date,is_published,title\n"+
			",2024-01-01,true,Ghost\n"+
			"2,2024-01-02,true,Real\n")

	posts, err := NewParser(nil).ParsePosts(path)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "2", posts[0].ID)
}

func TestParsePosts_BOMAndShortRows(t *testing.T) {
	path := writeCSV(t, "posts.csv",
		"\xEF\xBB\xBFpost_id,post_date,is_published,title\n"+
			"1,2024-01-01\n")

	posts, err := NewParser(nil).ParsePosts(path)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "1", posts[0].ID)
	assert.False(t, posts[0].Published)
	assert.Empty(t, posts[0].Title)
}

func TestParseSubscribers(t *testing.T) {
	path := writeCSV(t, "email_list.csv",
		"email,active_subscription,plan,email_disabled,created_at,first_payment_at\n"+
			"paid@example.com,true,yearly,false,2023-06-01 10:00:00,2023-06-02 10:00:00\n"+
			"free@example.com,true,,false,2023-07-01 10:00:00,\n"+
			",true,free,false,,\n")

	subs, err := NewParser(nil).ParseSubscribers(path)
	require.NoError(t, err)
	require.Len(t, subs, 2)

	paid := subs[0]
	assert.True(t, paid.IsPaid())
	assert.Equal(t, "2023-06", paid.SignupMonth())

	free := subs[1]
	assert.Equal(t, domain.PlanFree, free.Plan)
	assert.False(t, free.IsPaid())
}

func TestParseOpens_SkipsRowsWithoutEmail(t *testing.T) {
	path := writeCSV(t, "opens.csv",
		"email,timestamp,country,device_type,client_type\n"+
			"a@example.com,2024-01-05 10:00:00,US,mobile,app\n"+
			",2024-01-05 11:00:00,GB,desktop,web\n")

	events, err := NewParser(nil).ParseOpens(path, "101")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "101", events[0].PostID)
	assert.Equal(t, "a@example.com", events[0].Email)
	assert.Equal(t, "US", events[0].Country)
}

func TestParseTimeLayouts(t *testing.T) {
	p := NewParser(nil)

	tests := []struct {
		value string
		want  *time.Time
	}{
		{value: ""},
		{value: "2024-01-05T09:00:00Z", want: timePtr(2024, 1, 5, 9)},
		{value: "2024-01-05 09:00:00", want: timePtr(2024, 1, 5, 9)},
		{value: "2024-01-05", want: timePtr(2024, 1, 5, 0)},
		{value: "garbage"},
	}

	for _, tt := range tests {
		got := p.parseTime(tt.value, "test.csv", 0)
		if tt.want == nil {
			assert.Nil(t, got, "value %q", tt.value)
		} else {
			require.NotNil(t, got, "value %q", tt.value)
			assert.True(t, got.Equal(*tt.want), "value %q", tt.value)
		}
	}
}

func timePtr(year int, month time.Month, day, hour int) *time.Time {
	t := time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
	return &t
}
