package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/motorsure/brokerage-backend/pkg/errors"
)

const (
	statusBreakdownSQL = `
SELECT status AS label, COUNT(*) AS count
FROM purchases
GROUP BY status
ORDER BY count DESC
`

	revenueSQL = `
SELECT COALESCE(SUM(r.premium), 0) AS revenue
FROM purchases p
JOIN insurance_rates r ON r.id = p.rate_id
WHERE p.status IN ('active', 'about_to_expire', 'expired')
`

	salesTrendSQL = `
SELECT
  to_char(date_trunc('month', p.purchase_date), 'YYYY-MM') AS month,
  COUNT(*) AS count,
  COALESCE(SUM(r.premium), 0) AS revenue
FROM purchases p
JOIN insurance_rates r ON r.id = p.rate_id
WHERE p.status IN ('active', 'about_to_expire', 'expired')
  AND p.purchase_date >= ?
GROUP BY month
ORDER BY month ASC
`

	topAgentsSQL = `
SELECT
  a.id AS agent_id,
  a.first_name || ' ' || a.last_name AS name,
  COUNT(*) AS count,
  COALESCE(SUM(r.premium), 0) AS revenue
FROM purchases p
JOIN agents a ON a.id = p.agent_id
JOIN insurance_rates r ON r.id = p.rate_id
WHERE p.status IN ('active', 'about_to_expire', 'expired')
GROUP BY a.id, name
ORDER BY revenue DESC
LIMIT ?
`

	brandPreferenceSQL = `
SELECT c.brand AS label, COUNT(*) AS count
FROM purchases p
JOIN cars c ON c.id = p.car_id
GROUP BY c.brand
ORDER BY count DESC
LIMIT ?
`

	levelBreakdownSQL = `
SELECT r.level AS label, COUNT(*) AS count
FROM purchases p
JOIN insurance_rates r ON r.id = p.rate_id
GROUP BY r.level
ORDER BY count DESC
`

	recentPurchasesSQL = `
SELECT
  p.id,
  p.policy_number,
  p.status,
  p.purchase_date,
  cu.first_name || ' ' || cu.last_name AS customer_name,
  r.insurance_brand,
  r.premium
FROM purchases p
JOIN customers cu ON cu.id = p.customer_id
JOIN insurance_rates r ON r.id = p.rate_id
ORDER BY p.purchase_date DESC, p.id DESC
LIMIT ?
`

	agentSummarySQL = `
SELECT
  COUNT(*) FILTER (WHERE p.status = 'pending') AS pending,
  COUNT(*) FILTER (WHERE p.status = 'active') AS active,
  COUNT(*) FILTER (WHERE p.status = 'about_to_expire') AS about_to_expire,
  COUNT(*) FILTER (WHERE p.status = 'expired') AS expired,
  COUNT(*) FILTER (WHERE p.status = 'rejected') AS rejected,
  COALESCE(SUM(r.premium) FILTER (WHERE p.status IN ('active', 'about_to_expire', 'expired')), 0) AS revenue
FROM purchases p
JOIN insurance_rates r ON r.id = p.rate_id
WHERE p.agent_id = ?
`

	adminCountsSQL = `
SELECT
  (SELECT COUNT(*) FROM customers) AS customers,
  (SELECT COUNT(*) FROM agents) AS agents,
  (SELECT COUNT(*) FROM purchases WHERE status = 'pending') AS pending_purchases
`
)

const (
	defaultTrendMonths = 12
	defaultTopLimit    = 5
	defaultRecentLimit = 10
)

// StatusCount is one slice of the purchase status breakdown.
type StatusCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// TrendPoint is one month of policy sales.
type TrendPoint struct {
	Month   string          `json:"month"`
	Count   int64           `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// AgentRank is one row of the top-agent leaderboard.
type AgentRank struct {
	AgentID uuid.UUID       `json:"agent_id"`
	Name    string          `json:"name"`
	Count   int64           `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// RecentPurchase is one row of the latest-transactions feed.
type RecentPurchase struct {
	ID             uuid.UUID       `json:"id"`
	PolicyNumber   string          `json:"policy_number"`
	Status         string          `json:"status"`
	PurchaseDate   time.Time       `json:"purchase_date"`
	CustomerName   string          `json:"customer_name"`
	InsuranceBrand string          `json:"insurance_brand"`
	Premium        decimal.Decimal `json:"premium"`
}

// AdminSummary aggregates the back-office home screen numbers. Revenue counts
// premiums of every policy that ever went active, expired ones included.
type AdminSummary struct {
	Customers        int64           `json:"customers"`
	Agents           int64           `json:"agents"`
	PendingPurchases int64           `json:"pending_purchases"`
	Revenue          decimal.Decimal `json:"revenue"`
	StatusBreakdown  []StatusCount   `json:"status_breakdown"`
	SalesTrend       []TrendPoint    `json:"sales_trend"`
	TopAgents        []AgentRank     `json:"top_agents"`
	BrandPreference  []StatusCount   `json:"brand_preference"`
	LevelBreakdown   []StatusCount   `json:"level_breakdown"`
	Recent           []RecentPurchase `json:"recent"`
}

// AgentSummary aggregates one agent's book of business.
type AgentSummary struct {
	Pending       int64           `json:"pending"`
	Active        int64           `json:"active"`
	AboutToExpire int64           `json:"about_to_expire"`
	Expired       int64           `json:"expired"`
	Rejected      int64           `json:"rejected"`
	Revenue       decimal.Decimal `json:"revenue"`
}

// Service computes dashboard aggregates with read-only queries.
type Service interface {
	AdminSummary(ctx context.Context) (*AdminSummary, error)
	AgentSummary(ctx context.Context, agentID uuid.UUID) (*AgentSummary, error)
}

// ServiceParams bundles the dependencies for the dashboard service.
type ServiceParams struct {
	DB *gorm.DB
}

type service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService constructs a dashboard service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database is required")
	}
	return &service{db: params.DB, now: time.Now}, nil
}

func (s *service) AdminSummary(ctx context.Context) (*AdminSummary, error) {
	summary := &AdminSummary{}

	var counts struct {
		Customers        int64
		Agents           int64
		PendingPurchases int64
	}
	if err := s.db.WithContext(ctx).Raw(adminCountsSQL).Scan(&counts).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "dashboard counts")
	}
	summary.Customers = counts.Customers
	summary.Agents = counts.Agents
	summary.PendingPurchases = counts.PendingPurchases

	var revenue struct{ Revenue decimal.Decimal }
	if err := s.db.WithContext(ctx).Raw(revenueSQL).Scan(&revenue).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "dashboard revenue")
	}
	summary.Revenue = revenue.Revenue

	if err := s.db.WithContext(ctx).Raw(statusBreakdownSQL).Scan(&summary.StatusBreakdown).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "status breakdown")
	}

	since := s.now().UTC().AddDate(0, -defaultTrendMonths, 0)
	if err := s.db.WithContext(ctx).Raw(salesTrendSQL, since).Scan(&summary.SalesTrend).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sales trend")
	}

	if err := s.db.WithContext(ctx).Raw(topAgentsSQL, defaultTopLimit).Scan(&summary.TopAgents).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "top agents")
	}

	if err := s.db.WithContext(ctx).Raw(brandPreferenceSQL, defaultTopLimit).Scan(&summary.BrandPreference).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "brand preference")
	}

	if err := s.db.WithContext(ctx).Raw(levelBreakdownSQL).Scan(&summary.LevelBreakdown).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "level breakdown")
	}

	if err := s.db.WithContext(ctx).Raw(recentPurchasesSQL, defaultRecentLimit).Scan(&summary.Recent).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recent purchases")
	}

	return summary, nil
}

func (s *service) AgentSummary(ctx context.Context, agentID uuid.UUID) (*AgentSummary, error) {
	if agentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id is required")
	}
	summary := &AgentSummary{}
	if err := s.db.WithContext(ctx).Raw(agentSummarySQL, agentID).Scan(summary).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "agent summary")
	}
	return summary, nil
}
