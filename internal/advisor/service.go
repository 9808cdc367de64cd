package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// ChatCompleter is the slice of the OpenAI client the service uses
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Service struct {
	client ChatCompleter
	model  string
	logger *slog.Logger
}

func NewService(client ChatCompleter, model string, logger *slog.Logger) *Service {
	return &Service{
		client: client,
		model:  model,
		logger: logger,
	}
}

var costFunction = openai.FunctionDefinition{
	Name:        "provide_cost_recommendations",
	Description: "Provide cost optimization recommendations for company expense data",
	Parameters: jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"recommendations": {
				Type: jsonschema.Array,
				Items: &jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"category":        {Type: jsonschema.String},
						"currentSpend":    {Type: jsonschema.Number},
						"benchmark":       {Type: jsonschema.Number},
						"potentialSaving": {Type: jsonschema.Number},
						"recommendations": {
							Type:  jsonschema.Array,
							Items: &jsonschema.Definition{Type: jsonschema.String},
						},
						"priority": {
							Type: jsonschema.String,
							Enum: []string{"high", "medium", "low"},
						},
					},
					Required: []string{"category", "currentSpend", "benchmark", "potentialSaving", "recommendations", "priority"},
				},
			},
		},
		Required: []string{"recommendations"},
	},
}

var taxFunction = openai.FunctionDefinition{
	Name:        "provide_tax_recommendations",
	Description: "Provide tax deduction recommendations for company expense data",
	Parameters: jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"recommendations": {
				Type: jsonschema.Array,
				Items: &jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"category":        {Type: jsonschema.String},
						"potentialSaving": {Type: jsonschema.Number},
						"suggestion":      {Type: jsonschema.String},
						"impact":          {Type: jsonschema.String},
						"implementation":  {Type: jsonschema.String},
					},
					Required: []string{"category", "potentialSaving", "suggestion", "impact", "implementation"},
				},
			},
		},
		Required: []string{"recommendations"},
	},
}

// AnalyzeCost asks the model for cost optimization recommendations.
// The model answers through a function call; when it declines to call
// the function the result is an empty slice, not an error.
func (s *Service) AnalyzeCost(ctx context.Context, bills []BillSummary) ([]CostRecommendation, error) {
	spendingByDept := groupByDepartment(bills)
	prompt, err := buildPrompt("cost optimization", spendingByDept, bills)
	if err != nil {
		return nil, err
	}

	args, err := s.callFunction(ctx, prompt, costFunction,
		"You are a financial analyst specializing in corporate expense optimization.")
	if err != nil {
		s.logger.Error("cost analysis failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}
	if args == "" {
		s.logger.Info("model made no cost recommendations")
		return []CostRecommendation{}, nil
	}

	var payload struct {
		Recommendations []CostRecommendation `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(args), &payload); err != nil {
		s.logger.Error("failed to parse cost recommendations", "error", err, "arguments", args)
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	s.logger.Info("cost analysis completed", "recommendation_count", len(payload.Recommendations))
	return payload.Recommendations, nil
}

// AnalyzeTax asks the model for tax deduction recommendations
func (s *Service) AnalyzeTax(ctx context.Context, bills []BillSummary) ([]TaxRecommendation, error) {
	spendingByDept := groupByDepartment(bills)
	prompt, err := buildPrompt("tax deduction", spendingByDept, bills)
	if err != nil {
		return nil, err
	}

	args, err := s.callFunction(ctx, prompt, taxFunction,
		"You are a corporate tax advisor identifying deduction opportunities in expense data.")
	if err != nil {
		s.logger.Error("tax analysis failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}
	if args == "" {
		s.logger.Info("model made no tax recommendations")
		return []TaxRecommendation{}, nil
	}

	var payload struct {
		Recommendations []TaxRecommendation `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(args), &payload); err != nil {
		s.logger.Error("failed to parse tax recommendations", "error", err, "arguments", args)
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	s.logger.Info("tax analysis completed", "recommendation_count", len(payload.Recommendations))
	return payload.Recommendations, nil
}

// callFunction runs one completion and returns the function-call
// arguments, or "" when the model answered in plain text instead
func (s *Service) callFunction(ctx context.Context, prompt string, fn openai.FunctionDefinition, system string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Functions: []openai.FunctionDefinition{fn},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from model")
	}

	call := resp.Choices[0].Message.FunctionCall
	if call == nil || call.Name != fn.Name {
		return "", nil
	}

	return call.Arguments, nil
}

func groupByDepartment(bills []BillSummary) map[string]float64 {
	totals := make(map[string]float64)
	for _, b := range bills {
		totals[b.Department] += b.Amount
	}
	return totals
}

func buildPrompt(kind string, spendingByDept map[string]float64, bills []BillSummary) (string, error) {
	deptJSON, err := json.Marshal(spendingByDept)
	if err != nil {
		return "", err
	}
	billsJSON, err := json.Marshal(bills)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"Analyze this company expense data and provide %s recommendations.\n\nDepartment spending: %s\n\nBills: %s",
		kind, deptJSON, billsJSON), nil
}
