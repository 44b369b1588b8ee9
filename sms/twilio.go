// Package sms delivers verification texts.
//
// [Twilio] calls the Twilio Messages REST API. [LogSender] writes messages to a
// structured logger instead and is meant for local development.
package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout = 15 * time.Second
	twilioBaseURL  = "https://api.twilio.com"
)

// Twilio sends SMS through the Twilio Messages API.
type Twilio struct {
	AccountSID string
	AuthToken  string
	From       string
	BaseURL    string
	HTTPClient *http.Client
}

// NewTwilio returns a client for the given account sending from the given
// number.
func NewTwilio(accountSID, authToken, from string) *Twilio {
	return &Twilio{
		AccountSID: accountSID,
		AuthToken:  authToken,
		From:       from,
		BaseURL:    twilioBaseURL,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

type twilioError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Send posts one message. The body is never logged.
func (c *Twilio) Send(ctx context.Context, message, to string) error {
	if c.AccountSID == "" || c.AuthToken == "" || c.From == "" {
		return errors.New("sms: twilio credentials not configured")
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.From)
	form.Set("Body", message)

	endpoint := strings.TrimRight(c.BaseURL, "/") + "/2010-04-01/Accounts/" + url.PathEscape(c.AccountSID) + "/Messages.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.AccountSID, c.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 == 2 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var apiErr twilioError
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
		return fmt.Errorf("sms: twilio status=%d code=%d: %s", resp.StatusCode, apiErr.Code, apiErr.Message)
	}
	return fmt.Errorf("sms: twilio status=%d body=%s", resp.StatusCode, string(raw))
}
