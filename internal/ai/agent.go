package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dispatch-ledger/internal/database"
	"dispatch-ledger/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	modelName = "gemini-2.0-flash-001"

	// maxToolRounds bounds how many tool calls one question may chain.
	maxToolRounds = 5

	// maxToolRecords caps search results handed back to the model.
	maxToolRecords = 50
)

var ErrUnknownTool = errors.New("unknown tool")

// Register is what the assistant reads from. It never writes.
type Register interface {
	Search(ctx context.Context, q string) ([]models.SaleRecord, error)
	GSTBySupplier(ctx context.Context, supplier string) (string, bool, error)
	Summary(ctx context.Context, start, end string) (*database.DispatchSummary, error)
}

// Assistant answers questions about the dispatch register with Gemini,
// letting the model call read-only tools over the store.
type Assistant struct {
	Store  Register
	APIKey string
}

func NewAssistant(store Register, apiKey string) *Assistant {
	return &Assistant{Store: store, APIKey: apiKey}
}

var tools = []*genai.Tool{
	{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "search_dispatches",
				Description: "Search dispatch records by supplier, DC number, GST number, serial number, KVA, date or remarks. An empty query lists everything, newest first.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"query": {Type: genai.TypeString, Description: "Text to look for"},
					},
				},
			},
			{
				Name:        "lookup_gst",
				Description: "Get the most recent GST number used for a supplier.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"supplier": {Type: genai.TypeString, Description: "Exact supplier name"},
					},
					Required: []string{"supplier"},
				},
			},
			{
				Name:        "dispatch_summary",
				Description: "Count dispatches and transformers and total the KVA for a date range.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
						"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
					},
					Required: []string{"start_date", "end_date"},
				},
			},
		},
	},
}

// Ask runs one question through the model, answering its tool calls until
// it replies with text.
func (a *Assistant) Ask(ctx context.Context, userMessage string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(a.APIKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel(modelName)
	model.Tools = tools

	today := time.Now().Format(time.DateOnly)
	systemPrompt := fmt.Sprintf(`SYSTEM: Today is %s. You help a transformer sales office read its dispatch register.

	RULES:
	1. Never guess a GST number. Call 'lookup_gst' with the supplier name.
	2. For questions about a serial number, DC number or supplier, call 'search_dispatches'.
	3. For totals over a period (how many units, how much KVA), call 'dispatch_summary'.
	4. You cannot change records. If asked to, say so.

	USER: %s`, today, userMessage)

	session := model.StartChat()
	resp, err := session.SendMessage(ctx, genai.Text(systemPrompt))
	if err != nil {
		return "", err
	}

	// --- HANDLE TOOL CALLS ---
	for round := 0; round < maxToolRounds; round++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			return printResponse(resp), nil
		}

		replies := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			result, err := a.ExecuteTool(ctx, call.Name, call.Args)
			if err != nil {
				result = map[string]any{"error": err.Error()}
			}
			replies = append(replies, genai.FunctionResponse{Name: call.Name, Response: result})
		}

		resp, err = session.SendMessage(ctx, replies...)
		if err != nil {
			return "", err
		}
	}
	return printResponse(resp), nil
}

// ExecuteTool runs one of the declared tools against the store.
func (a *Assistant) ExecuteTool(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	switch name {
	case "search_dispatches":
		query, _ := args["query"].(string)
		recs, err := a.Store.Search(ctx, query)
		if err != nil {
			return nil, err
		}
		total := len(recs)
		if len(recs) > maxToolRecords {
			recs = recs[:maxToolRecords]
		}
		return map[string]any{"total": total, "records": recs}, nil

	case "lookup_gst":
		supplier, _ := args["supplier"].(string)
		gst, found, err := a.Store.GSTBySupplier(ctx, supplier)
		if err != nil {
			return nil, err
		}
		return map[string]any{"supplier": supplier, "found": found, "gst_number": gst}, nil

	case "dispatch_summary":
		start, _ := args["start_date"].(string)
		end, _ := args["end_date"].(string)
		if !isDate(start) || !isDate(end) {
			return nil, errors.New("dates must be in YYYY-MM-DD format")
		}
		summary, err := a.Store.Summary(ctx, start, end)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"dispatches":   summary.Dispatches,
			"transformers": summary.Transformers,
			"total_kva":    summary.TotalKVA,
			"suppliers":    summary.Suppliers,
		}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
}

// --- HELPER FUNCTIONS ---

func isDate(s string) bool {
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	var calls []genai.FunctionCall
	for _, part := range resp.Candidates[0].Content.Parts {
		if call, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, call)
		}
	}
	return calls
}

func printResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "I could not find an answer."
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return "I could not find an answer."
}
