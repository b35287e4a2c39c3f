package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/flavorlab/reimburse-assistant/models"
)

// Client extracts structured invoice fields from an uploaded document.
type Client interface {
	Extract(ctx context.Context, data []byte, mimeType string) (models.InvoiceData, error)
}

// Error is a failed recognition attempt with a human-readable message.
// It covers remote call errors, unparseable responses and responses
// missing required fields; it is scoped to one file and never blocks
// other uploads.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// GeminiClient calls the Gemini generateContent API with the invoice
// image inlined and a JSON response schema pinned to the invoice fields.
type GeminiClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewGeminiClient(baseURL, apiKey, model string) *GeminiClient {
	return &GeminiClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: http.DefaultClient,
	}
}

const extractPrompt = "Output JSON ONLY. Required fields: invoiceNumber, sellerName, buyerName, sellerTaxId, buyerTaxId, sellerBankAccount, category, amount. For Buyer Name/TaxID, look for '购买方' or '付款人'. For Seller Bank, look for '开户行及账号'. Amount is the '合计' or '价税合计'."

// responseSchema constrains generation to the invoice field set.
var responseSchema = json.RawMessage(`{
  "type": "OBJECT",
  "properties": {
    "invoiceNumber": {"type": "STRING"},
    "sellerName": {"type": "STRING"},
    "buyerName": {"type": "STRING"},
    "sellerTaxId": {"type": "STRING"},
    "buyerTaxId": {"type": "STRING"},
    "sellerBankAccount": {"type": "STRING"},
    "category": {"type": "STRING"},
    "amount": {"type": "NUMBER"}
  },
  "required": ["invoiceNumber", "sellerName", "buyerName", "sellerTaxId", "buyerTaxId", "category", "amount"]
}`)

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMIMEType string          `json:"responseMimeType"`
	ResponseSchema   json.RawMessage `json:"responseSchema"`
	ThinkingConfig   thinkingConfig  `json:"thinkingConfig"`
}

// thinkingConfig disables chain-of-thought, which only slows OCR down.
type thinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// extractedInvoice mirrors the JSON the model is asked to produce.
type extractedInvoice struct {
	InvoiceNumber     string  `json:"invoiceNumber"`
	SellerName        string  `json:"sellerName"`
	BuyerName         string  `json:"buyerName"`
	SellerTaxID       string  `json:"sellerTaxId"`
	BuyerTaxID        string  `json:"buyerTaxId"`
	SellerBankAccount string  `json:"sellerBankAccount"`
	Category          string  `json:"category"`
	Amount            float64 `json:"amount"`
}

func (c *GeminiClient) Extract(ctx context.Context, data []byte, mimeType string) (models.InvoiceData, error) {
	reqBody := generateRequest{
		Contents: []content{{
			Parts: []part{
				{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(data)}},
				{Text: extractPrompt},
			},
		}},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   responseSchema,
			ThinkingConfig:   thinkingConfig{ThinkingBudget: 0},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return models.InvoiceData{}, &Error{Message: "failed to encode recognition request", Err: err}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return models.InvoiceData{}, &Error{Message: "failed to build recognition request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.InvoiceData{}, &Error{Message: "recognition service unreachable", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.InvoiceData{}, &Error{Message: "failed to read recognition response", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return models.InvoiceData{}, &Error{Message: fmt.Sprintf("recognition service returned %d: %s", resp.StatusCode, body)}
	}

	var gen generateResponse
	if err := json.Unmarshal(body, &gen); err != nil {
		return models.InvoiceData{}, &Error{Message: "unparseable recognition response", Err: err}
	}
	if len(gen.Candidates) == 0 || len(gen.Candidates[0].Content.Parts) == 0 {
		return models.InvoiceData{}, &Error{Message: "recognition response contained no candidates"}
	}

	var extracted extractedInvoice
	text := gen.Candidates[0].Content.Parts[0].Text
	if err := json.Unmarshal([]byte(text), &extracted); err != nil {
		return models.InvoiceData{}, &Error{Message: "failed to parse invoice data", Err: err}
	}
	if extracted.InvoiceNumber == "" || extracted.BuyerName == "" {
		return models.InvoiceData{}, &Error{Message: "recognition result missing required fields"}
	}

	return models.InvoiceData{
		InvoiceNumber:     extracted.InvoiceNumber,
		SellerName:        extracted.SellerName,
		BuyerName:         extracted.BuyerName,
		SellerTaxID:       extracted.SellerTaxID,
		BuyerTaxID:        extracted.BuyerTaxID,
		SellerBankAccount: extracted.SellerBankAccount,
		Category:          extracted.Category,
		Amount:            extracted.Amount,
	}, nil
}
