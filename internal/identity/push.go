package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
)

// PushOutcome is the tagged delivery result of a push send.
type PushOutcome struct {
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

// Success reports whether at least one message was delivered.
func (o PushOutcome) Success() bool {
	return o.Delivered > 0
}

// SendPush delivers a notification to each device token, one message per
// token. Delivery is best-effort; per-token failures are logged and
// counted, never raised.
func (c *Client) SendPush(ctx context.Context, tokens []string, title, body string, data map[string]string) PushOutcome {
	var out PushOutcome
	for _, token := range tokens {
		if token == "" {
			continue
		}
		if err := c.sendPushMessage(ctx, token, title, body, data); err != nil {
			log.Printf("push delivery failed for token %s…: %v", truncateToken(token), err)
			out.Failed++
			continue
		}
		out.Delivered++
	}
	return out
}

func (c *Client) sendPushMessage(ctx context.Context, token, title, body string, data map[string]string) error {
	accessToken, err := c.tokenSource.Token()
	if err != nil {
		return fmt.Errorf("failed to obtain access token: %w", err)
	}

	message := map[string]interface{}{
		"message": map[string]interface{}{
			"token": token,
			"notification": map[string]string{
				"title": title,
				"body":  body,
			},
		},
	}
	if len(data) > 0 {
		message["message"].(map[string]interface{})["data"] = data
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal push message: %w", err)
	}

	url := fmt.Sprintf("%s/projects/%s/messages:send", fcmURL, c.projectID)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create push request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d - %s", ErrIdentityRequest, resp.StatusCode, string(respBody))
	}
	return nil
}

func truncateToken(token string) string {
	if len(token) > 12 {
		return token[:12]
	}
	return token
}
