// Package slack wraps the Slack Web API, incoming webhooks and the Events API
// for the room bridge.
package slack

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"github.com/yukikurage/room-workflow-api/internal/config"
)

// API is the subset of Slack the bridge depends on.
type API interface {
	// CreateChannel creates a conversation and returns its channel ID
	CreateChannel(ctx context.Context, token, name string) (string, error)
	// PostMessage posts text with chat.postMessage and returns the message ts
	PostMessage(ctx context.Context, token, channelID, text string) (string, error)
	// PostWebhook posts text to an incoming webhook; Slack returns no ts
	PostWebhook(ctx context.Context, webhookURL, text string) error
}

// Client implements API with slack-go. A binding's own OAuth token wins over
// the configured bot token.
type Client struct {
	botToken   string
	apiURL     string
	httpClient *http.Client
}

func NewClient(cfg config.SlackConfig) *Client {
	return &Client{
		botToken:   cfg.BotToken,
		apiURL:     cfg.APIURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) api(token string) (*slack.Client, error) {
	if token == "" {
		token = c.botToken
	}
	if token == "" {
		return nil, fmt.Errorf("slack: no token configured")
	}

	opts := []slack.Option{slack.OptionHTTPClient(c.httpClient)}
	if c.apiURL != "" {
		opts = append(opts, slack.OptionAPIURL(c.apiURL))
	}
	return slack.New(token, opts...), nil
}

func (c *Client) CreateChannel(ctx context.Context, token, name string) (string, error) {
	api, err := c.api(token)
	if err != nil {
		return "", err
	}

	name = ChannelName(name)
	channel, err := api.CreateConversationContext(ctx, slack.CreateConversationParams{
		ChannelName: name,
		IsPrivate:   true,
	})
	if err == nil {
		return channel.ID, nil
	}

	// a retried provisioning finds the channel its first attempt created
	var slackErr slack.SlackErrorResponse
	if errors.As(err, &slackErr) && slackErr.Err == "name_taken" {
		if id, findErr := c.findChannel(ctx, api, name); findErr == nil {
			return id, nil
		}
	}
	return "", fmt.Errorf("slack: create channel %q: %w", name, err)
}

func (c *Client) findChannel(ctx context.Context, api *slack.Client, name string) (string, error) {
	params := &slack.GetConversationsParameters{
		Types:           []string{"private_channel", "public_channel"},
		ExcludeArchived: true,
		Limit:           200,
	}
	for {
		channels, cursor, err := api.GetConversationsContext(ctx, params)
		if err != nil {
			return "", err
		}
		for _, ch := range channels {
			if ch.Name == name {
				return ch.ID, nil
			}
		}
		if cursor == "" {
			return "", fmt.Errorf("slack: channel %q not found", name)
		}
		params.Cursor = cursor
	}
}

func (c *Client) PostMessage(ctx context.Context, token, channelID, text string) (string, error) {
	api, err := c.api(token)
	if err != nil {
		return "", err
	}

	_, ts, err := api.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false))
	if err != nil {
		return "", fmt.Errorf("slack: post to %s: %w", channelID, err)
	}
	return ts, nil
}

func (c *Client) PostWebhook(ctx context.Context, webhookURL, text string) error {
	if err := slack.PostWebhookCustomHTTPContext(ctx, webhookURL, c.httpClient, &slack.WebhookMessage{Text: text}); err != nil {
		return fmt.Errorf("slack: webhook: %w", err)
	}
	return nil
}

var invalidChannelChars = regexp.MustCompile(`[^a-z0-9_-]+`)

// ChannelName lowercases name and replaces characters Slack rejects. Channel
// names are capped at 80 characters.
func ChannelName(name string) string {
	name = invalidChannelChars.ReplaceAllString(strings.ToLower(name), "-")
	name = strings.Trim(name, "-")
	if len(name) > 80 {
		name = name[:80]
	}
	return name
}
