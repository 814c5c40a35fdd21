package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Budget struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	UserID      uuid.UUID    `json:"user_id" db:"user_id"`
	Category    string       `json:"category" db:"category"`
	AmountCents int64        `json:"amount_cents" db:"amount_cents"`
	Period      BudgetPeriod `json:"period" db:"period"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

type BudgetPeriod string

const (
	PeriodDaily   BudgetPeriod = "DAILY"
	PeriodWeekly  BudgetPeriod = "WEEKLY"
	PeriodMonthly BudgetPeriod = "MONTHLY"
)

func (p BudgetPeriod) IsValid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	default:
		return false
	}
}

// BoundsAt returns the period window containing the given instant. Weeks
// start on Monday; all bounds are UTC.
func (p BudgetPeriod) BoundsAt(at time.Time) (start, end time.Time) {
	at = at.UTC()
	switch p {
	case PeriodDaily:
		start = time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 0, 1)
	case PeriodWeekly:
		weekday := int(at.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start = time.Date(at.Year(), at.Month(), at.Day()-weekday+1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 0, 7)
	default:
		start = time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, 0)
	}
	return start, end
}

type CreateBudgetInput struct {
	Category    string       `json:"category"`
	AmountCents int64        `json:"amount_cents"`
	Period      BudgetPeriod `json:"period"`
}

func (in *CreateBudgetInput) Validate() error {
	if in.Category == "" {
		return &ValidationError{Field: "category", Reason: "required"}
	}
	if in.AmountCents <= 0 {
		return &ValidationError{Field: "amount_cents", Reason: "must be positive"}
	}
	if in.Period == "" {
		in.Period = PeriodMonthly
	}
	if !in.Period.IsValid() {
		return &ValidationError{Field: "period", Reason: "unknown period"}
	}
	return nil
}

func NewBudget(userID uuid.UUID, in CreateBudgetInput) *Budget {
	return &Budget{
		ID:          uuid.New(),
		UserID:      userID,
		Category:    in.Category,
		AmountCents: in.AmountCents,
		Period:      in.Period,
	}
}

// ThresholdBand maps a percent-of-budget cutoff to the notification it emits
// when newly crossed.
type ThresholdBand struct {
	Percent  int
	Type     NotificationType
	Priority Priority
}

func DefaultThresholdBands() []ThresholdBand {
	return []ThresholdBand{
		{Percent: 75, Type: NotifBudgetWarning, Priority: PriorityMedium},
		{Percent: 100, Type: NotifBudgetExceeded, Priority: PriorityHigh},
	}
}

// ParseThresholdBands parses a "percent:type:priority" comma list, e.g.
// "75:BUDGET_WARNING:MEDIUM,100:BUDGET_EXCEEDED:HIGH". Bands are returned
// sorted ascending by percent.
func ParseThresholdBands(s string) ([]ThresholdBand, error) {
	var bands []ThresholdBand
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("malformed threshold band %q", part)
		}
		percent, err := strconv.Atoi(fields[0])
		if err != nil || percent <= 0 {
			return nil, fmt.Errorf("malformed threshold percent %q", fields[0])
		}
		ntype := NotificationType(fields[1])
		if !ntype.IsValid() {
			return nil, fmt.Errorf("unknown notification type %q", fields[1])
		}
		prio := Priority(fields[2])
		if !prio.IsValid() {
			return nil, fmt.Errorf("unknown priority %q", fields[2])
		}
		bands = append(bands, ThresholdBand{Percent: percent, Type: ntype, Priority: prio})
	}
	if len(bands) == 0 {
		return nil, fmt.Errorf("no threshold bands in %q", s)
	}
	sort.Slice(bands, func(i, j int) bool { return bands[i].Percent < bands[j].Percent })
	return bands, nil
}

// HighestCrossedBand returns the highest band whose percent is covered by the
// spent/allocated ratio, or false when no band is crossed.
func HighestCrossedBand(bands []ThresholdBand, ratio float64) (ThresholdBand, bool) {
	pct := ratio * 100
	var crossed ThresholdBand
	found := false
	for _, b := range bands {
		if pct >= float64(b.Percent) && (!found || b.Percent > crossed.Percent) {
			crossed = b
			found = true
		}
	}
	return crossed, found
}

// BudgetAlertState tracks the highest threshold already notified for a budget
// category within one period. A new period start is a fresh state.
type BudgetAlertState struct {
	BudgetID              uuid.UUID `json:"budget_id" db:"budget_id"`
	Category              string    `json:"category" db:"category"`
	PeriodStart           time.Time `json:"period_start" db:"period_start"`
	LastNotifiedThreshold int       `json:"last_notified_threshold" db:"last_notified_threshold"`
	UpdatedAt             time.Time `json:"updated_at" db:"updated_at"`
}

// BudgetAlertData is the notification payload for budget alerts. Key names
// are part of the wire contract consumed by clients.
type BudgetAlertData struct {
	BudgetID  uuid.UUID `json:"budgetId"`
	Category  string    `json:"category"`
	Threshold int       `json:"threshold"`
	Spent     int64     `json:"spent"`
	Amount    int64     `json:"amount"`
}

// BudgetStatus is the read-side snapshot for GET /budgets/:id/status.
type BudgetStatus struct {
	Budget                Budget    `json:"budget"`
	SpentCents            int64     `json:"spent_cents"`
	Ratio                 float64   `json:"ratio"`
	LastNotifiedThreshold int       `json:"last_notified_threshold"`
	PeriodStart           time.Time `json:"period_start"`
	PeriodEnd             time.Time `json:"period_end"`
}
