package payroll

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/valstrz/payroll-engine/internal/domain/payroll"
	"github.com/valstrz/payroll-engine/internal/pkg/money"
)

var (
	two        = decimal.NewFromInt(2)
	three      = decimal.NewFromInt(3)
	four       = decimal.NewFromInt(4)
	twoAndHalf = decimal.RequireFromString("2.5")
)

// GarnishableLimit is the part of net pay that may be garnished under art. 446
// of the Civil Procedure Code, given the minimum wage mrz.
func GarnishableLimit(net, mrz decimal.Decimal, hasChildren bool) decimal.Decimal {
	if !mrz.IsPositive() || net.LessThanOrEqual(mrz) {
		return decimal.Zero
	}
	switch {
	case net.LessThan(mrz.Mul(two)):
		if hasChildren {
			return money.Round(money.Divide(net, four))
		}
		return money.Round(money.Divide(net, three))
	case net.LessThan(mrz.Mul(four)):
		if hasChildren {
			return money.Round(money.Divide(net, three))
		}
		return money.Round(money.Divide(net, two))
	default:
		if hasChildren {
			return money.NonNegative(net.Sub(mrz.Mul(twoAndHalf)))
		}
		return money.NonNegative(net.Sub(mrz.Mul(two)))
	}
}

var deductionOrder = map[payroll.DeductionKind]int{
	payroll.DeductionKindStatutory: 0,
	payroll.DeductionKindAdvance:   1,
	payroll.DeductionKindVoluntary: 2,
}

// applyDeductions withholds garnishments and deductions from net in priority
// order: alimony, other garnishments, statutory, advances, voluntary. Nothing
// is withheld beyond the remaining net; the shortfall is reported as deferred.
func applyDeductions(net, mrz decimal.Decimal, garnishments []payroll.Garnishment, deductions []payroll.EmployeeDeduction) []payroll.AppliedDeduction {
	gs := make([]payroll.Garnishment, 0, len(garnishments))
	hasChildren := false
	for _, g := range garnishments {
		if !g.Active {
			continue
		}
		gs = append(gs, g)
		hasChildren = hasChildren || g.HasChildren
	}
	sort.SliceStable(gs, func(i, j int) bool {
		ai, aj := gs[i].Type == payroll.GarnishmentTypeAlimony, gs[j].Type == payroll.GarnishmentTypeAlimony
		if ai != aj {
			return ai
		}
		return gs[i].Priority < gs[j].Priority
	})

	ds := make([]payroll.EmployeeDeduction, len(deductions))
	copy(ds, deductions)
	sort.SliceStable(ds, func(i, j int) bool {
		oi, oj := deductionOrder[ds[i].Kind], deductionOrder[ds[j].Kind]
		if oi != oj {
			return oi < oj
		}
		return ds[i].Priority < ds[j].Priority
	})

	remaining := money.NonNegative(net)
	garnishable := GarnishableLimit(remaining, mrz, hasChildren)
	var applied []payroll.AppliedDeduction

	for _, g := range gs {
		debt, limited := g.Remaining()
		requested := g.MonthlyAmount
		if limited && (requested.IsZero() || requested.GreaterThan(debt)) {
			requested = debt
		}
		if !requested.IsPositive() {
			continue
		}

		take := decimal.Min(requested, remaining)
		if g.Type != payroll.GarnishmentTypeAlimony {
			take = decimal.Min(take, garnishable)
		}
		remaining = remaining.Sub(take)
		garnishable = money.NonNegative(garnishable.Sub(take))

		applied = append(applied, payroll.AppliedDeduction{
			SourceID:  g.ID,
			Code:      payroll.CodeGarnishment,
			Name:      g.Description,
			Requested: requested,
			Applied:   take,
			Deferred:  requested.Sub(take),
			Garnish:   true,
		})
	}

	for _, d := range ds {
		if !d.Amount.IsPositive() {
			continue
		}
		take := decimal.Min(d.Amount, remaining)
		remaining = remaining.Sub(take)
		applied = append(applied, payroll.AppliedDeduction{
			SourceID:  d.ID,
			Code:      d.Code,
			Name:      d.Name,
			Requested: d.Amount,
			Applied:   take,
			Deferred:  d.Amount.Sub(take),
			Priority:  d.Priority,
		})
	}
	return applied
}
