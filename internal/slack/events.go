package slack

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

var ErrInvalidSignature = errors.New("slack: invalid request signature")

// InboundMessage is a human message posted in a bridged Slack channel.
type InboundMessage struct {
	Channel string
	User    string
	Text    string
	TS      string
}

// Event is the part of an Events API callback the bridge acts on. At most one
// of Challenge and Message is set; both empty means the event is ignored.
type Event struct {
	Challenge string
	Message   *InboundMessage
}

// Verify checks the X-Slack-Signature of body. An empty secret disables the check.
func Verify(header http.Header, body []byte, secret string) error {
	if secret == "" {
		return nil
	}

	sv, err := slack.NewSecretsVerifier(header, secret)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if _, err := sv.Write(body); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if err := sv.Ensure(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return nil
}

// ParseEvent decodes an Events API body. Bot posts, edits, deletions and other
// message subtypes are ignored so the bridge's own posts do not loop back.
func ParseEvent(body []byte) (*Event, error) {
	ev, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		return nil, fmt.Errorf("slack: parse event: %w", err)
	}

	switch ev.Type {
	case slackevents.URLVerification:
		verification, ok := ev.Data.(*slackevents.EventsAPIURLVerificationEvent)
		if !ok {
			return nil, fmt.Errorf("slack: unexpected url_verification payload")
		}
		return &Event{Challenge: verification.Challenge}, nil

	case slackevents.CallbackEvent:
		msg, ok := ev.InnerEvent.Data.(*slackevents.MessageEvent)
		if !ok {
			return &Event{}, nil
		}
		if msg.BotID != "" || msg.SubType != "" || msg.Text == "" {
			return &Event{}, nil
		}
		return &Event{Message: &InboundMessage{
			Channel: msg.Channel,
			User:    msg.User,
			Text:    msg.Text,
			TS:      msg.TimeStamp,
		}}, nil
	}

	return &Event{}, nil
}
