package dto

// BulkActionRequest names the staging records an operator acts on. Reason is
// used by reject and deletion actions and ignored by the rest.
type BulkActionRequest struct {
	IDs    []string `json:"ids" validate:"required,min=1,dive,uuid4"`
	Reason string   `json:"reason" validate:"omitempty,max=500"`
}

// BulkActionResult reports the outcome for a single record. Failed records do
// not stop the batch.
type BulkActionResult struct {
	ID      string `json:"id"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Warning string `json:"warning,omitempty"`
}

// BulkActionResponse aggregates per-record outcomes.
type BulkActionResponse struct {
	Results   []BulkActionResult `json:"results"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
}
