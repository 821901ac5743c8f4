package ai

import (
	"context"
	"errors"
	"testing"

	"dispatch-ledger/internal/database"
	"dispatch-ledger/internal/models"

	"github.com/google/generative-ai-go/genai"
)

type fakeRegister struct {
	records  []models.SaleRecord
	gst      map[string]string
	lastFrom string
	lastTo   string
}

func (f *fakeRegister) Search(ctx context.Context, q string) ([]models.SaleRecord, error) {
	var out []models.SaleRecord
	for _, r := range f.records {
		if r.Matches(q) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRegister) GSTBySupplier(ctx context.Context, supplier string) (string, bool, error) {
	gst, ok := f.gst[supplier]
	return gst, ok, nil
}

func (f *fakeRegister) Summary(ctx context.Context, start, end string) (*database.DispatchSummary, error) {
	f.lastFrom, f.lastTo = start, end
	return &database.DispatchSummary{Start: start, End: end, Dispatches: 2, Transformers: 3, TotalKVA: 850}, nil
}

func TestExecuteTool(t *testing.T) {
	store := &fakeRegister{
		records: []models.SaleRecord{
			{ID: "1", Supplier: "Acme", DCNumber: "DC-1", Items: []models.SaleItem{{SerialNumber: "T-1", KVA: 500}}},
			{ID: "2", Supplier: "Beta", DCNumber: "DC-2", Items: []models.SaleItem{{SerialNumber: "T-2", KVA: 100}}},
		},
		gst: map[string]string{"Acme": "A1"},
	}
	a := NewAssistant(store, "unused")
	ctx := context.Background()

	got, err := a.ExecuteTool(ctx, "search_dispatches", map[string]any{"query": "acme"})
	if err != nil {
		t.Fatalf("search_dispatches error = %v", err)
	}
	if got["total"] != 1 {
		t.Errorf("search_dispatches = %v, want one match", got)
	}

	got, err = a.ExecuteTool(ctx, "lookup_gst", map[string]any{"supplier": "Acme"})
	if err != nil || got["gst_number"] != "A1" || got["found"] != true {
		t.Errorf("lookup_gst = %v, %v", got, err)
	}
	got, err = a.ExecuteTool(ctx, "lookup_gst", map[string]any{"supplier": "Nobody"})
	if err != nil || got["found"] != false {
		t.Errorf("lookup_gst(unknown) = %v, %v", got, err)
	}

	got, err = a.ExecuteTool(ctx, "dispatch_summary", map[string]any{"start_date": "2024-01-01", "end_date": "2024-01-31"})
	if err != nil || got["transformers"] != 3 || got["total_kva"] != 850.0 {
		t.Errorf("dispatch_summary = %v, %v", got, err)
	}
	if store.lastFrom != "2024-01-01" || store.lastTo != "2024-01-31" {
		t.Errorf("summary window = %s..%s", store.lastFrom, store.lastTo)
	}

	if _, err := a.ExecuteTool(ctx, "dispatch_summary", map[string]any{"start_date": "January"}); err == nil {
		t.Error("dispatch_summary accepted a bad date")
	}
	if _, err := a.ExecuteTool(ctx, "update_price", nil); !errors.Is(err, ErrUnknownTool) {
		t.Errorf("unknown tool error = %v", err)
	}
}

func TestResponseParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{
				genai.FunctionCall{Name: "lookup_gst", Args: map[string]any{"supplier": "Acme"}},
				genai.Text("Checking."),
			}},
		}},
	}
	calls := functionCalls(resp)
	if len(calls) != 1 || calls[0].Name != "lookup_gst" {
		t.Errorf("functionCalls() = %v", calls)
	}
	if got := printResponse(resp); got != "Checking." {
		t.Errorf("printResponse() = %q", got)
	}
	if got := printResponse(&genai.GenerateContentResponse{}); got == "" {
		t.Error("printResponse() of an empty response should still say something")
	}
}
