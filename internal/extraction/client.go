package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	internalerrors "github.com/xtractpay/xtractpay/internal"
	"github.com/xtractpay/xtractpay/internal/bill"
)

// Result is the receipt data the extraction service returns
type Result struct {
	Amount           bill.FlexAmount       `json:"amount"`
	Category         string                `json:"category"`
	Vendor           string                `json:"vendor_name"`
	BillNumber       string                `json:"bill_id"`
	ExpenseDate      string                `json:"expense_date"`
	GSTNumber        string                `json:"gstno"`
	Tax              bill.FlexAmount       `json:"tax"`
	Items            []Item                `json:"items"`
	ValidationResult bill.ValidationResult `json:"validation_result"`
}

// Item is one line of the extracted receipt
type Item struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    bill.FlexAmount `json:"price"`
}

// Client calls the external receipt-extraction service
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// ProcessReceipt uploads a receipt file for OCR extraction. The phone
// number travels with the file so the pipeline can attribute the bill.
func (c *Client) ProcessReceipt(ctx context.Context, filename string, file io.Reader, phoneNumber string) (*Result, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy receipt: %w", err)
	}
	if err := writer.WriteField("phone_number", phoneNumber); err != nil {
		return nil, fmt.Errorf("write phone field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	url := c.baseURL + "/process-receipt"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c.logger.Info("sending receipt for extraction", "filename", filename, "url", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("extraction request failed", "error", err)
		return nil, internalerrors.NewExternalError("receipt extraction service unavailable", internalerrors.ErrCodeExtractionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		c.logger.Error("extraction service returned error",
			"status", resp.StatusCode,
			"body", string(raw))
		return nil, internalerrors.NewExternalError(
			fmt.Sprintf("receipt extraction failed with status %d", resp.StatusCode),
			internalerrors.ErrCodeExtractionFailed, nil)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.logger.Error("failed to decode extraction response", "error", err)
		return nil, internalerrors.NewExternalError("invalid extraction response", internalerrors.ErrCodeExtractionFailed, err)
	}

	c.logger.Info("receipt extracted",
		"vendor", result.Vendor,
		"amount", float64(result.Amount),
		"valid", result.ValidationResult.BillValid)

	return &result, nil
}
