package schedule

import "github.com/shopspring/decimal"

func shift(index int, name, start, end string, total, night int64) ShiftDefinition {
	return ShiftDefinition{
		Index:      index,
		Name:       name,
		StartTime:  start,
		EndTime:    end,
		TotalHours: decimal.NewFromInt(total),
		NightHours: decimal.NewFromInt(night),
	}
}

// Templates returns the predefined rotations offered to a new tenant.
func Templates(tenantID string) []ShiftSchedule {
	return []ShiftSchedule{
		{
			TenantID: tenantID, Code: "SHIFT_12_24", Name: "12/24", ReferenceMonths: 4, Active: true,
			Shifts:   []ShiftDefinition{shift(1, "Day 12h", "07:00", "19:00", 12, 0)},
			Rotation: ParseRotation([]int{1, 0, 0}),
		},
		{
			TenantID: tenantID, Code: "SHIFT_12_48", Name: "12/24/12/48", ReferenceMonths: 4, Active: true,
			Shifts: []ShiftDefinition{
				shift(1, "Day 12h", "07:00", "19:00", 12, 0),
				shift(2, "Night 12h", "19:00", "07:00", 12, 8),
			},
			Rotation: ParseRotation([]int{1, 0, 2, 0, 0}),
		},
		{
			TenantID: tenantID, Code: "SHIFT_2x8", Name: "Two shifts 8h", ReferenceMonths: 1, Active: true,
			Shifts: []ShiftDefinition{
				shift(1, "First shift", "06:00", "14:00", 8, 0),
				shift(2, "Second shift", "14:00", "22:00", 8, 0),
			},
			Rotation: ParseRotation([]int{1, 1, 1, 1, 1, 0, 0}),
		},
		{
			TenantID: tenantID, Code: "SHIFT_3x8", Name: "Three shifts 8h", ReferenceMonths: 3, Active: true,
			Shifts: []ShiftDefinition{
				shift(1, "First shift", "06:00", "14:00", 8, 0),
				shift(2, "Second shift", "14:00", "22:00", 8, 0),
				shift(3, "Night shift", "22:00", "06:00", 8, 8),
			},
			Rotation: ParseRotation([]int{1, 1, 1, 1, 1, 0, 0}),
		},
	}
}
