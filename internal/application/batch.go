package application

// ItemOutcome is the result of one element of a bulk operation.
type ItemOutcome struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// BatchResult reports per-item outcomes of a bulk operation. Individual
// failures never abort the batch.
type BatchResult struct {
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Items     []ItemOutcome `json:"items"`
}

func (b *BatchResult) add(id string, err error) {
	out := ItemOutcome{ID: id, OK: err == nil}
	if err != nil {
		out.Error = err.Error()
		b.Failed++
	} else {
		b.Succeeded++
	}
	b.Items = append(b.Items, out)
}
