package models

// Document type tags used in ids, metadata, and retrieval filters.
const (
	DocProfile      = "profile"
	DocEvent        = "event"
	DocDaily        = "daily"
	DocLab          = "lab"
	DocFitness      = "fitness"
	DocBodyComp     = "body_comp"
	DocIntervention = "intervention"
	DocKPI          = "kpi"
	DocChat         = "chat"
)

// Document is the unit stored in the vector index: a flattened text rendering
// of a source row plus typed metadata and a fixed-dimension embedding.
// IDs take the form "<type>:<date-or-month>" (chats use the full timestamp,
// the profile uses the member id).
type Document struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Text      string         `json:"text"`
	Metadata  map[string]any `json:"metadata"`
	Embedding []float32      `json:"-"`
}

// Date returns the canonical date (or month) string from the document
// metadata, or "" when absent.
func (d Document) Date() string {
	if v, ok := d.Metadata["date"].(string); ok {
		return v
	}
	if v, ok := d.Metadata["month"].(string); ok {
		return v
	}
	return ""
}
