package schedule

import "time"

type WorkScheduleResponse struct {
	ID              string  `json:"id"`
	Code            string  `json:"code"`
	Name            string  `json:"name"`
	Kind            string  `json:"kind"`
	HoursPerDay     string  `json:"hours_per_day"`
	ShiftScheduleID *string `json:"shift_schedule_id"`
}

func NewWorkScheduleResponses(list []WorkSchedule) []WorkScheduleResponse {
	out := make([]WorkScheduleResponse, 0, len(list))
	for _, w := range list {
		out = append(out, WorkScheduleResponse{
			ID:              w.ID,
			Code:            w.Code,
			Name:            w.Name,
			Kind:            string(w.Kind),
			HoursPerDay:     w.HoursPerDay.String(),
			ShiftScheduleID: w.ShiftScheduleID,
		})
	}
	return out
}

type ShiftDefinitionResponse struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	TotalHours string `json:"total_hours"`
	NightHours string `json:"night_hours"`
}

type ShiftScheduleResponse struct {
	ID              string                    `json:"id"`
	Code            string                    `json:"code"`
	Name            string                    `json:"name"`
	ReferenceMonths int                       `json:"reference_months"`
	Shifts          []ShiftDefinitionResponse `json:"shifts"`
	// 0 marks a rest day, any other value a shift index
	Rotation      []int     `json:"rotation"`
	RotationStart time.Time `json:"rotation_start"`
	Active        bool      `json:"active"`
}

func NewShiftScheduleResponse(s ShiftSchedule) ShiftScheduleResponse {
	shifts := make([]ShiftDefinitionResponse, 0, len(s.Shifts))
	for _, d := range s.Shifts {
		shifts = append(shifts, ShiftDefinitionResponse{
			Index:      d.Index,
			Name:       d.Name,
			StartTime:  d.StartTime,
			EndTime:    d.EndTime,
			TotalHours: d.TotalHours.String(),
			NightHours: d.NightHours.String(),
		})
	}
	return ShiftScheduleResponse{
		ID:              s.ID,
		Code:            s.Code,
		Name:            s.Name,
		ReferenceMonths: s.ReferenceMonths,
		Shifts:          shifts,
		Rotation:        EncodeRotation(s.Rotation),
		RotationStart:   s.RotationStart,
		Active:          s.Active,
	}
}

func NewShiftScheduleResponses(list []ShiftSchedule) []ShiftScheduleResponse {
	out := make([]ShiftScheduleResponse, 0, len(list))
	for _, s := range list {
		out = append(out, NewShiftScheduleResponse(s))
	}
	return out
}
