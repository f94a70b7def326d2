package rules

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/valstrz/payroll-engine/internal/domain/insurance"
	"github.com/valstrz/payroll-engine/internal/pkg/apperror"
	"golang.org/x/sync/singleflight"
)

// Loader reads a tenant-year's configuration in one pass. Concurrent loads of the
// same key share one set of queries.
type Loader struct {
	repo  insurance.ConfigRepository
	group singleflight.Group
}

func NewLoader(repo insurance.ConfigRepository) *Loader {
	return &Loader{repo: repo}
}

func (l *Loader) Load(ctx context.Context, tenantID string, year int) (*ConfigSet, error) {
	key := fmt.Sprintf("%s:%d", tenantID, year)
	// The shared load outlives the caller that started it.
	loadCtx := context.WithoutCancel(ctx)
	v, err, shared := l.group.Do(key, func() (any, error) {
		return l.load(loadCtx, tenantID, year)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Debug("insurance configuration load shared", "tenant_id", tenantID, "year", year)
	}
	return v.(*ConfigSet), nil
}

func (l *Loader) load(ctx context.Context, tenantID string, year int) (*ConfigSet, error) {
	rates, err := l.repo.GetRates(ctx, tenantID, year)
	if err != nil {
		if errors.Is(err, insurance.ErrRatesNotFound) {
			return nil, apperror.ConfigurationMissing("insurance rates for %d", year).Wrap(err)
		}
		return nil, err
	}

	contributions, err := l.repo.ListContributions(ctx, tenantID, year)
	if err != nil {
		return nil, err
	}
	thresholds, err := l.repo.ListThresholds(ctx, tenantID, year)
	if err != nil {
		return nil, err
	}
	activities, err := l.repo.ListEconomicActivities(ctx, tenantID, year)
	if err != nil {
		return nil, err
	}

	return NewConfigSet(rates, contributions, thresholds, activities), nil
}
