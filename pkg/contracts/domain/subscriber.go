package domain

import "time"

// Subscription plans that count as paid when combined with a recorded first
// payment.
const (
	PlanYearly   = "yearly"
	PlanMonthly  = "monthly"
	PlanFounding = "founding"
	PlanFree     = "free"
)

// paidPlans is the closed set of plans eligible for the paid classification.
var paidPlans = map[string]bool{
	PlanYearly:   true,
	PlanMonthly:  true,
	PlanFounding: true,
}

// Subscriber represents one row of the subscriber roster. Email is the
// deduplication key for open events but is not guaranteed unique across
// malformed exports; each row is treated independently.
type Subscriber struct {
	Email              string     `json:"email" validate:"required"`
	ActiveSubscription bool       `json:"active_subscription"`
	Expiry             *time.Time `json:"expiry"`
	Plan               string     `json:"plan"`
	EmailDisabled      bool       `json:"email_disabled"`
	CreatedAt          *time.Time `json:"created_at"`
	FirstPaymentAt     *time.Time `json:"first_payment_at"`
}

// IsPaid reports whether the subscriber has ever paid: a recorded first
// payment and a plan in the paid set.
func (s *Subscriber) IsPaid() bool {
	return s.FirstPaymentAt != nil && paidPlans[s.Plan]
}

// IsActive reports whether the subscription is active and email delivery is
// not disabled.
func (s *Subscriber) IsActive() bool {
	return s.ActiveSubscription && !s.EmailDisabled
}

// IsChurned reports whether a previously paying subscriber has gone inactive.
func (s *Subscriber) IsChurned() bool {
	return s.IsPaid() && !s.ActiveSubscription
}

// SignupMonth returns the "YYYY-MM" cohort key of the signup timestamp, or ""
// when created_at is missing.
func (s *Subscriber) SignupMonth() string {
	if s.CreatedAt == nil {
		return ""
	}
	return s.CreatedAt.Format("2006-01")
}

// SubscriberStats is the segmentation summary over a full roster. Paid and
// free both count active subscribers only, so a churned paid subscriber
// appears in neither.
type SubscriberStats struct {
	Total         int            `json:"total"`
	Active        int            `json:"active"`
	Inactive      int            `json:"inactive"`
	Paid          int            `json:"paid"`
	Free          int            `json:"free"`
	Churned       int            `json:"churned"`
	EmailDisabled int            `json:"emailDisabled"`
	ByPlan        map[string]int `json:"byPlan"`
	ByMonth       map[string]int `json:"byMonth"`
}
