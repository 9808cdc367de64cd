package advisor_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	openai "github.com/sashabaranov/go-openai"

	"github.com/xtractpay/xtractpay/internal/advisor"
)

func TestAdvisor(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Advisor Suite")
}

type mockChatCompleter struct {
	response     openai.ChatCompletionResponse
	err          error
	lastRequest  openai.ChatCompletionRequest
	requestCount int
}

func (m *mockChatCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.lastRequest = req
	m.requestCount++
	if m.err != nil {
		return openai.ChatCompletionResponse{}, m.err
	}
	return m.response, nil
}

func functionCallResponse(name, arguments string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{
				Message: openai.ChatCompletionMessage{
					FunctionCall: &openai.FunctionCall{
						Name:      name,
						Arguments: arguments,
					},
				},
			},
		},
	}
}

func plainTextResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

var _ = Describe("AdvisorService", func() {
	var (
		service *advisor.Service
		client  *mockChatCompleter
		bills   []advisor.BillSummary
	)

	BeforeEach(func() {
		client = &mockChatCompleter{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = advisor.NewService(client, "gpt-4-turbo-preview", logger)
		bills = []advisor.BillSummary{
			{Amount: 50000, Category: "Travel", Vendor: "Delta", Department: "Engineering"},
			{Amount: 12000, Category: "Meals", Vendor: "Subway", Department: "Sales"},
		}
	})

	Describe("AnalyzeCost", func() {
		It("should parse recommendations from the function call arguments", func() {
			client.response = functionCallResponse("provide_cost_recommendations", `{
				"recommendations": [{
					"category": "Travel",
					"currentSpend": 50000,
					"benchmark": 40000,
					"potentialSaving": 10000,
					"recommendations": ["negotiate corporate fares"],
					"priority": "high"
				}]
			}`)

			recs, err := service.AnalyzeCost(context.Background(), bills)

			Expect(err).NotTo(HaveOccurred())
			Expect(recs).To(HaveLen(1))
			Expect(recs[0].Category).To(Equal("Travel"))
			Expect(recs[0].PotentialSaving).To(Equal(10000.0))
			Expect(recs[0].Priority).To(Equal("high"))
			Expect(recs[0].Recommendations).To(ConsistOf("negotiate corporate fares"))
		})

		It("should send the function definition with the request", func() {
			client.response = functionCallResponse("provide_cost_recommendations", `{"recommendations":[]}`)

			_, err := service.AnalyzeCost(context.Background(), bills)

			Expect(err).NotTo(HaveOccurred())
			Expect(client.lastRequest.Functions).To(HaveLen(1))
			Expect(client.lastRequest.Functions[0].Name).To(Equal("provide_cost_recommendations"))
			Expect(client.lastRequest.Model).To(Equal("gpt-4-turbo-preview"))
		})

		It("should return an empty slice when the model answers in plain text", func() {
			client.response = plainTextResponse("I have no recommendations at this time.")

			recs, err := service.AnalyzeCost(context.Background(), bills)

			Expect(err).NotTo(HaveOccurred())
			Expect(recs).NotTo(BeNil())
			Expect(recs).To(BeEmpty())
		})

		It("should wrap transport failures in the analysis sentinel", func() {
			client.err = errors.New("rate limited")

			_, err := service.AnalyzeCost(context.Background(), bills)

			Expect(errors.Is(err, advisor.ErrAnalysisFailed)).To(BeTrue())
		})

		It("should fail on malformed function arguments", func() {
			client.response = functionCallResponse("provide_cost_recommendations", `{"recommendations": not-json`)

			_, err := service.AnalyzeCost(context.Background(), bills)

			Expect(errors.Is(err, advisor.ErrAnalysisFailed)).To(BeTrue())
		})
	})

	Describe("AnalyzeTax", func() {
		It("should parse tax recommendations", func() {
			client.response = functionCallResponse("provide_tax_recommendations", `{
				"recommendations": [{
					"category": "Meals",
					"potentialSaving": 3000,
					"suggestion": "claim the 50% meals deduction",
					"impact": "medium",
					"implementation": "tag client meals separately"
				}]
			}`)

			recs, err := service.AnalyzeTax(context.Background(), bills)

			Expect(err).NotTo(HaveOccurred())
			Expect(recs).To(HaveLen(1))
			Expect(recs[0].Suggestion).To(Equal("claim the 50% meals deduction"))
		})

		It("should ignore a function call with the wrong name", func() {
			client.response = functionCallResponse("provide_cost_recommendations", `{"recommendations":[]}`)

			recs, err := service.AnalyzeTax(context.Background(), bills)

			Expect(err).NotTo(HaveOccurred())
			Expect(recs).To(BeEmpty())
		})
	})
})
