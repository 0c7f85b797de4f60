package dataprocessing

import (
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"subpulse/pkg/contracts/domain"
)

// timestampLayouts are tried in order when normalizing date fields. The
// export mixes RFC 3339 with space-separated and date-only forms.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Parser normalizes raw export rows into typed domain records. Defaults are
// deterministic: empty dates become nil, empty enums get their documented
// literal fallback, and booleans follow the strict equality rule in
// domain.ParseBool.
type Parser struct {
	logger   *slog.Logger
	validate *validator.Validate
}

// NewParser creates a parser with the given logger.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		logger:   logger,
		validate: validator.New(),
	}
}

// ParsePosts reads and normalizes the posts listing. Duplicate IDs keep the
// first occurrence; rows without an ID are dropped with a logged warning.
func (p *Parser) ParsePosts(path string) ([]domain.Post, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	posts := make([]domain.Post, 0, len(rows))
	seen := make(map[string]bool, len(rows))

	for i, row := range rows {
		id, slug := domain.SplitPostID(row.Get("post_id"))

		post := domain.Post{
			ID:          id,
			Slug:        slug,
			Date:        p.parseTime(row.Get("post_date"), path, i),
			Published:   domain.ParseBool(row.Get("is_published")),
			EmailSentAt: p.parseTime(row.Get("email_sent_at"), path, i),
			Type:        defaultString(row.Get("type"), domain.DefaultPostType),
			Audience:    defaultString(row.Get("audience"), domain.AudienceEveryone),
			Title:       row.Get("title"),
			Subtitle:    row.Get("subtitle"),
		}

		if err := p.validate.Struct(&post); err != nil {
			p.logger.Warn("skipping post row with missing identifier",
				slog.String("path", path),
				slog.Int("row", i+1))
			continue
		}

		if seen[post.ID] {
			p.logger.Warn("duplicate post identifier, keeping first occurrence",
				slog.String("post_id", post.ID),
				slog.Int("row", i+1))
			continue
		}
		seen[post.ID] = true

		posts = append(posts, post)
	}

	p.logger.Info("parsed posts listing",
		slog.String("path", path),
		slog.Int("post_count", len(posts)))

	return posts, nil
}

// ParseSubscribers reads and normalizes the subscriber roster. Each row is
// treated independently; duplicate emails are kept as-is.
func (p *Parser) ParseSubscribers(path string) ([]domain.Subscriber, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	subscribers := make([]domain.Subscriber, 0, len(rows))
	for i, row := range rows {
		sub := domain.Subscriber{
			Email:              row.Get("email"),
			ActiveSubscription: domain.ParseBool(row.Get("active_subscription")),
			Expiry:             p.parseTime(row.Get("expiry"), path, i),
			Plan:               defaultString(row.Get("plan"), domain.PlanFree),
			EmailDisabled:      domain.ParseBool(row.Get("email_disabled")),
			CreatedAt:          p.parseTime(row.Get("created_at"), path, i),
			FirstPaymentAt:     p.parseTime(row.Get("first_payment_at"), path, i),
		}

		if err := p.validate.Struct(&sub); err != nil {
			p.logger.Warn("skipping subscriber row without email",
				slog.String("path", path),
				slog.Int("row", i+1))
			continue
		}

		subscribers = append(subscribers, sub)
	}

	p.logger.Info("parsed subscriber roster",
		slog.String("path", path),
		slog.Int("subscriber_count", len(subscribers)))

	return subscribers, nil
}

// ParseOpens reads one post's open log. Rows without an email are dropped;
// missing categorical fields stay empty here and are bucketed as Unknown at
// tally time.
func (p *Parser) ParseOpens(path, postID string) ([]domain.OpenEvent, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	events := make([]domain.OpenEvent, 0, len(rows))
	for i, row := range rows {
		event := domain.OpenEvent{
			PostID:     postID,
			Email:      row.Get("email"),
			Timestamp:  p.parseTime(row.Get("timestamp"), path, i),
			Country:    row.Get("country"),
			City:       row.Get("city"),
			Region:     row.Get("region"),
			DeviceType: row.Get("device_type"),
			ClientOS:   row.Get("client_os"),
			ClientType: row.Get("client_type"),
			UserAgent:  row.Get("user_agent"),
		}

		if event.Email == "" {
			p.logger.Warn("skipping open event without email",
				slog.String("path", path),
				slog.Int("row", i+1))
			continue
		}

		events = append(events, event)
	}

	return events, nil
}

// ParseDelivers reads one post's delivery log. Every row is one successful
// send.
func (p *Parser) ParseDelivers(path, postID string) ([]domain.DeliverEvent, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	events := make([]domain.DeliverEvent, 0, len(rows))
	for i, row := range rows {
		event := domain.DeliverEvent{
			PostID:    postID,
			Email:     row.Get("email"),
			Timestamp: p.parseTime(row.Get("timestamp"), path, i),
		}

		if event.Email == "" {
			p.logger.Warn("skipping deliver event without email",
				slog.String("path", path),
				slog.Int("row", i+1))
			continue
		}

		events = append(events, event)
	}

	return events, nil
}

// parseTime normalizes a timestamp field. An empty value is nil; an
// unparsable one is nil with a logged warning, never a row rejection.
func (p *Parser) parseTime(value, path string, rowIndex int) *time.Time {
	if value == "" {
		return nil
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}

	p.logger.Warn("unparsable timestamp, treating as absent",
		slog.String("path", path),
		slog.Int("row", rowIndex+1),
		slog.String("value", value))
	return nil
}

// defaultString substitutes fallback for the empty string.
func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
