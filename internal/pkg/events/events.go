package events

import "time"

const (
	MonthClosedTopic   = "payroll.month.closed.v1"
	MonthReopenedTopic = "payroll.month.reopened.v1"
)

const (
	EventTypeMonthClosed   = "payroll.month.closed"
	EventTypeMonthReopened = "payroll.month.reopened"
)

type MonthClosedEvent struct {
	EventType      string    `json:"event_type"`
	TenantID       string    `json:"tenant_id"`
	PayrollID      string    `json:"payroll_id"`
	MonthClosingID string    `json:"month_closing_id"`
	Year           int       `json:"year"`
	Month          int       `json:"month"`
	Revision       int       `json:"revision"`
	EmployeeCount  int       `json:"employee_count"`
	TotalNet       string    `json:"total_net"`
	ClosedBy       string    `json:"closed_by"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type MonthReopenedEvent struct {
	EventType         string    `json:"event_type"`
	TenantID          string    `json:"tenant_id"`
	PreviousPayrollID string    `json:"previous_payroll_id"`
	PayrollID         string    `json:"payroll_id"`
	Year              int       `json:"year"`
	Month             int       `json:"month"`
	Revision          int       `json:"revision"`
	Reason            string    `json:"reason"`
	ReopenedBy        string    `json:"reopened_by"`
	OccurredAt        time.Time `json:"occurred_at"`
}
