package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/boddenberg/spending-insights-go/internal/chat/domain"
	"github.com/boddenberg/spending-insights-go/internal/chat/port"
	maindomain "github.com/boddenberg/spending-insights-go/internal/domain"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// chartMonths is how many trend points a chart shows.
	chartMonths = 6
	// diningShare estimates the dining part of a month's spending.
	diningShare = 0.07

	luxuryCategory = "Luxury Retail"
)

// DefaultStrategies returns the built-in topics in routing order.
func DefaultStrategies(insights port.InsightsReader) []ChatStrategy {
	return []ChatStrategy{
		&DiningStrategy{insights: insights},
		&TrendStrategy{insights: insights},
		&CategoryStrategy{insights: insights},
		&LuxuryStrategy{insights: insights},
	}
}

// ============================================================
// Dining
// ============================================================

// DiningStrategy suggests ways to cut dining spend.
type DiningStrategy struct {
	insights port.InsightsReader
}

func (s *DiningStrategy) CanHandle(intent string) bool { return intent == domain.IntentDining }

func (s *DiningStrategy) Handle(ctx context.Context, c *domain.ChatContext) (*domain.ChatResponse, error) {
	spent := "dining is a significant expense"
	for _, cat := range s.insights.Categories(ctx, c.Current) {
		if strings.Contains(strings.ToLower(cat.Name), "dining") {
			spent = fmt.Sprintf("you spent $%d on dining (%d%% of total)", cat.TotalAmount, cat.PercentOfPeriodTotal)
			break
		}
	}

	trend := lastPoints(s.insights.Trend(ctx), chartMonths)
	data := make([]domain.ChartPoint, 0, len(trend))
	for _, t := range trend {
		data = append(data, domain.ChartPoint{Name: t.Month, Value: int64(math.Round(float64(t.Amount) * diningShare))})
	}

	return &domain.ChatResponse{
		Answer: fmt.Sprintf("Based on your %s spending data, %s. Here are some strategies to reduce dining expenses: "+
			"1) Set a weekly dining budget of $125 (targeting $500/month), 2) Cook at home 4-5 times per week, "+
			"3) Use cashback apps for restaurant purchases. This could save you $200-300 per month.",
			periodName(c.Current), spent),
		Chart: &domain.ChartConfig{
			Type:        domain.ChartBar,
			Title:       "Monthly Dining Expenses Estimate",
			Description: "Estimated dining portion of your monthly spending",
			Data:        data,
		},
	}, nil
}

// ============================================================
// Trend
// ============================================================

// TrendStrategy reports the month-over-month change.
type TrendStrategy struct {
	insights port.InsightsReader
}

func (s *TrendStrategy) CanHandle(intent string) bool { return intent == domain.IntentTrend }

func (s *TrendStrategy) Handle(ctx context.Context, c *domain.ChatContext) (*domain.ChatResponse, error) {
	cmp := s.insights.Totals(ctx, c.Current, c.Previous)

	direction, advice := "a decrease", "Great job on managing your expenses!"
	if cmp.Change > 0 {
		direction = "an increase"
		advice = "Consider setting monthly spending alerts and budget categories to maintain consistency."
	}
	pct := cmp.PercentChange
	if pct < 0 {
		pct = -pct
	}

	trend := lastPoints(s.insights.Trend(ctx), chartMonths)
	data := make([]domain.ChartPoint, 0, len(trend))
	for _, t := range trend {
		data = append(data, domain.ChartPoint{Name: t.Month, Value: t.Amount})
	}

	return &domain.ChatResponse{
		Answer: fmt.Sprintf("Your spending trend shows %s of %d%% in %s compared to %s (%s). %s",
			direction, pct, c.Current.Label(), c.Previous.Label(), signedDollars(cmp.Change), advice),
		Chart: &domain.ChartConfig{
			Type:        domain.ChartLine,
			Title:       "Monthly Spending Trend",
			Description: "Your spending pattern over the past months",
			Data:        data,
		},
	}, nil
}

// ============================================================
// Category
// ============================================================

// CategoryStrategy lists the category breakdown.
type CategoryStrategy struct {
	insights port.InsightsReader
}

func (s *CategoryStrategy) CanHandle(intent string) bool { return intent == domain.IntentCategory }

func (s *CategoryStrategy) Handle(ctx context.Context, c *domain.ChatContext) (*domain.ChatResponse, error) {
	categories := s.insights.Categories(ctx, c.Current)
	total := s.insights.Totals(ctx, c.Current, c.Previous).CurrentTotal

	parts := make([]string, 0, len(categories))
	data := make([]domain.ChartPoint, 0, len(categories))
	for _, cat := range categories {
		parts = append(parts, fmt.Sprintf("%s (%d%%)", cat.Name, cat.PercentOfPeriodTotal))
		data = append(data, domain.ChartPoint{Name: cat.Name, Value: cat.TotalAmount})
	}

	answer := fmt.Sprintf("Your %s spending breakdown shows: %s.", periodName(c.Current), strings.Join(parts, ", "))
	if len(categories) > 0 {
		answer += fmt.Sprintf(" %s represents your largest expense category with potential for optimization.", categories[0].Name)
	}

	return &domain.ChatResponse{
		Answer: answer,
		Chart: &domain.ChartConfig{
			Type:        domain.ChartPie,
			Title:       periodName(c.Current) + " Spending by Category",
			Description: fmt.Sprintf("Distribution of your $%s in %s expenses", thousands(int64(math.Round(total))), c.Current.Label()),
			Data:        data,
		},
	}, nil
}

// ============================================================
// Luxury
// ============================================================

// LuxuryStrategy answers only when the period has luxury retail spending.
type LuxuryStrategy struct {
	insights port.InsightsReader
}

func (s *LuxuryStrategy) CanHandle(intent string) bool { return intent == domain.IntentLuxury }

func (s *LuxuryStrategy) Handle(ctx context.Context, c *domain.ChatContext) (*domain.ChatResponse, error) {
	categories := s.insights.Categories(ctx, c.Current)

	var luxury *maindomain.CategorySummary
	for i := range categories {
		if categories[i].Name == luxuryCategory {
			luxury = &categories[i]
			break
		}
	}
	if luxury == nil {
		return nil, nil
	}

	data := make([]domain.ChartPoint, 0, len(categories))
	for _, cat := range categories {
		data = append(data, domain.ChartPoint{Name: cat.Name, Value: cat.TotalAmount})
	}

	return &domain.ChatResponse{
		Answer: fmt.Sprintf("Your luxury retail spending in %s was $%s, representing %d%% of your total expenses. "+
			"To reduce luxury spending: 1) Set a monthly luxury budget of $1,500, 2) Wait 24 hours before making "+
			"non-essential purchases over $200, 3) Focus on experiences over material items.",
			c.Current.Label(), thousands(luxury.TotalAmount), luxury.PercentOfPeriodTotal),
		Chart: &domain.ChartConfig{
			Type:        domain.ChartBar,
			Title:       "Top Spending Categories",
			Description: "Your highest expense categories in " + c.Current.Label(),
			Data:        data,
		},
	}, nil
}

// ============================================================
// Formatting helpers
// ============================================================

// periodName renders a period as "June 2025".
func periodName(p maindomain.Period) string {
	return fmt.Sprintf("%s %d", p.Label(), p.Year)
}

func lastPoints(points []maindomain.TrendPoint, n int) []maindomain.TrendPoint {
	if len(points) > n {
		return points[len(points)-n:]
	}
	return points
}

// signedDollars renders +$300, -$250 or $0.
func signedDollars(v float64) string {
	n := int64(math.Round(v))
	switch {
	case n > 0:
		return "+$" + thousands(n)
	case n < 0:
		return "-$" + thousands(-n)
	default:
		return "$0"
	}
}

var printer = message.NewPrinter(language.English)

// thousands groups digits with commas: 12345 -> "12,345".
func thousands(n int64) string {
	return printer.Sprintf("%d", n)
}
