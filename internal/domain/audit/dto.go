package audit

import "time"

type EntryResponse struct {
	ID          string         `json:"id"`
	Action      string         `json:"action"`
	EntityType  string         `json:"entity_type"`
	EntityID    string         `json:"entity_id"`
	Description string         `json:"description"`
	Details     map[string]any `json:"details,omitempty"`
	PerformedBy string         `json:"performed_by"`
	PerformedAt time.Time      `json:"performed_at"`
}

func NewEntryResponses(entries []Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, EntryResponse{
			ID:          e.ID,
			Action:      string(e.Action),
			EntityType:  e.EntityType,
			EntityID:    e.EntityID,
			Description: e.Description,
			Details:     e.Details,
			PerformedBy: e.Actor(),
			PerformedAt: e.PerformedAt,
		})
	}
	return out
}
