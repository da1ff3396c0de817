package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kipsang/customer-orders-api/pkg/logger"
)

// SMSService talks to the Africa's Talking messaging gateway.
type SMSService struct {
	username string
	apiKey   string
	senderID string
	baseURL  string
	client   *http.Client
}

type SMSResponse struct {
	SMSMessageData struct {
		Message    string `json:"Message"`
		Recipients []struct {
			StatusCode int    `json:"statusCode"`
			Number     string `json:"number"`
			Status     string `json:"status"`
			Cost       string `json:"cost"`
			MessageID  string `json:"messageId"`
		} `json:"Recipients"`
	} `json:"SMSMessageData"`
}

func NewSMSService(username, apiKey, senderID string) *SMSService {
	return &SMSService{
		username: username,
		apiKey:   apiKey,
		senderID: senderID,
		baseURL:  "https://api.sandbox.africastalking.com/version1/messaging",
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// SendOrderConfirmation sends the post-commit confirmation for a placed
// order. The caller treats the returned error as a boolean outcome only.
func (s *SMSService) SendOrderConfirmation(phoneNumber, customerName, orderDetails string) error {
	message := fmt.Sprintf("Hello %s, your order has been placed. Details: %s", customerName, orderDetails)
	return s.SendSMS(phoneNumber, message)
}

func (s *SMSService) SendSMS(to, message string) error {
	data := url.Values{}
	data.Set("username", s.username)
	data.Set("to", s.formatPhoneNumber(to))
	data.Set("message", message)
	if s.senderID != "" {
		data.Set("from", s.senderID)
	}

	req, err := http.NewRequest(http.MethodPost, s.baseURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	logger.Debug("sms gateway response", "body", string(bodyBytes))

	var smsResponse SMSResponse
	if err := json.Unmarshal(bodyBytes, &smsResponse); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(smsResponse.SMSMessageData.Recipients) == 0 {
		return fmt.Errorf("no recipients in response")
	}

	recipient := smsResponse.SMSMessageData.Recipients[0]
	// 101 and 102 are the gateway's accepted/queued codes.
	if recipient.StatusCode != 101 && recipient.StatusCode != 102 {
		return fmt.Errorf("sms failed to send: %s (code: %d)", recipient.Status, recipient.StatusCode)
	}

	return nil
}

func (s *SMSService) formatPhoneNumber(phone string) string {
	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.ReplaceAll(phone, "-", "")
	phone = strings.ReplaceAll(phone, "(", "")
	phone = strings.ReplaceAll(phone, ")", "")

	if strings.HasPrefix(phone, "0") {
		phone = "+254" + phone[1:]
	}
	if !strings.HasPrefix(phone, "+") {
		phone = "+254" + phone
	}
	return phone
}

// MockSMSService records sends instead of making network calls.
type MockSMSService struct {
	SentMessages []MockSMSMessage
	Err          error
}

type MockSMSMessage struct {
	To      string
	Message string
}

func NewMockSMSService() *MockSMSService {
	return &MockSMSService{SentMessages: make([]MockSMSMessage, 0)}
}

func (m *MockSMSService) SendSMS(to, message string) error {
	if m.Err != nil {
		return m.Err
	}
	m.SentMessages = append(m.SentMessages, MockSMSMessage{To: to, Message: message})
	return nil
}

func (m *MockSMSService) SendOrderConfirmation(phoneNumber, customerName, orderDetails string) error {
	message := fmt.Sprintf("Hello %s, your order has been placed. Details: %s", customerName, orderDetails)
	return m.SendSMS(phoneNumber, message)
}
