package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/valstrz/payroll-engine/internal/domain/insurance"
	"github.com/valstrz/payroll-engine/internal/pkg/database"
)

type insuranceConfigRepositoryImpl struct {
	db *database.DB
}

func NewInsuranceConfigRepository(db *database.DB) insurance.ConfigRepository {
	return &insuranceConfigRepositoryImpl{db: db}
}

// GetRates implements insurance.ConfigRepository.
func (r *insuranceConfigRepositoryImpl) GetRates(ctx context.Context, tenantID string, year int) (insurance.Rates, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, tenant_id, year, minimum_wage, max_insurable_income, flat_tax_rate,
			disability_exemption, voluntary_deduction_pct, social_expense_exemption,
			created_at, updated_at
		FROM insurance_rates
		WHERE tenant_id = $1 AND year = $2
	`

	var rates insurance.Rates
	err := q.QueryRow(ctx, query, tenantID, year).Scan(
		&rates.ID, &rates.TenantID, &rates.Year, &rates.MinimumWage, &rates.MaxInsurableIncome, &rates.FlatTaxRate,
		&rates.DisabilityExemption, &rates.VoluntaryDeductionPct, &rates.SocialExpenseExemption,
		&rates.CreatedAt, &rates.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return insurance.Rates{}, insurance.ErrRatesNotFound
		}
		return insurance.Rates{}, fmt.Errorf("failed to get insurance rates for %d: %w", year, err)
	}
	return rates, nil
}

// ListContributions implements insurance.ConfigRepository.
func (r *insuranceConfigRepositoryImpl) ListContributions(ctx context.Context, tenantID string, year int) ([]insurance.Contributions, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, tenant_id, year, category, insured_type,
			pension_employee, pension_employer,
			sickness_employee, sickness_employer,
			unemployment_employee, unemployment_employer,
			supplementary_pension_employee, supplementary_pension_employer,
			health_employee, health_employer,
			work_accident_employer, professional_pension_employer, teacher_pension_employer,
			created_at, updated_at
		FROM insurance_contributions
		WHERE tenant_id = $1 AND year = $2
		ORDER BY category, insured_type
	`

	rows, err := q.Query(ctx, query, tenantID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list insurance contributions: %w", err)
	}
	defer rows.Close()

	var list []insurance.Contributions
	for rows.Next() {
		var c insurance.Contributions
		if err := rows.Scan(
			&c.ID, &c.TenantID, &c.Year, &c.Category, &c.InsuredType,
			&c.PensionEmployee, &c.PensionEmployer,
			&c.SicknessEmployee, &c.SicknessEmployer,
			&c.UnemploymentEmployee, &c.UnemploymentEmployer,
			&c.SupplementaryPensionEmployee, &c.SupplementaryPensionEmployer,
			&c.HealthEmployee, &c.HealthEmployer,
			&c.WorkAccidentEmployer, &c.ProfessionalPensionEmployer, &c.TeacherPensionEmployer,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan insurance contributions: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// ListThresholds implements insurance.ConfigRepository.
func (r *insuranceConfigRepositoryImpl) ListThresholds(ctx context.Context, tenantID string, year int) ([]insurance.Threshold, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, tenant_id, year, economic_activity_code, occupation_group, occupation_code, min_insurable_income
		FROM insurance_thresholds
		WHERE tenant_id = $1 AND year = $2
	`

	rows, err := q.Query(ctx, query, tenantID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list insurance thresholds: %w", err)
	}
	defer rows.Close()

	var list []insurance.Threshold
	for rows.Next() {
		var t insurance.Threshold
		if err := rows.Scan(&t.ID, &t.TenantID, &t.Year, &t.EconomicActivityCode, &t.OccupationGroup, &t.OccupationCode, &t.MinInsurableIncome); err != nil {
			return nil, fmt.Errorf("failed to scan insurance threshold: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// ListEconomicActivities implements insurance.ConfigRepository.
func (r *insuranceConfigRepositoryImpl) ListEconomicActivities(ctx context.Context, tenantID string, year int) ([]insurance.EconomicActivity, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, tenant_id, year, code, name, base_amount, work_accident_percent, active
		FROM economic_activities
		WHERE tenant_id = $1 AND year = $2
		ORDER BY code
	`

	rows, err := q.Query(ctx, query, tenantID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list economic activities: %w", err)
	}
	defer rows.Close()

	var list []insurance.EconomicActivity
	for rows.Next() {
		var a insurance.EconomicActivity
		if err := rows.Scan(&a.ID, &a.TenantID, &a.Year, &a.Code, &a.Name, &a.BaseAmount, &a.WorkAccidentPercent, &a.Active); err != nil {
			return nil, fmt.Errorf("failed to scan economic activity: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
