package insurance

import "context"

// ConfigRepository reads the statutory tables. All methods are scoped by tenantID.
type ConfigRepository interface {
	GetRates(ctx context.Context, tenantID string, year int) (Rates, error)
	ListContributions(ctx context.Context, tenantID string, year int) ([]Contributions, error)
	ListThresholds(ctx context.Context, tenantID string, year int) ([]Threshold, error)
	ListEconomicActivities(ctx context.Context, tenantID string, year int) ([]EconomicActivity, error)
}
