package notify

import (
	"context"
	"strings"
	"time"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// twilioMessageCreator is the slice of the Twilio client used by the
// dispatcher; a test seam.
type twilioMessageCreator interface {
	CreateMessage(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error)
}

// TwilioDispatcher sends verification codes as SMS through the Twilio
// messaging API.
type TwilioDispatcher struct {
	api    twilioMessageCreator
	from   string
	window time.Duration
}

// NewTwilioDispatcher constructs a dispatcher authenticated with the account
// SID and auth token. Messages are sent from the given phone number.
func NewTwilioDispatcher(accountSID, authToken, from string, window time.Duration) *TwilioDispatcher {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioDispatcher{api: client.Api, from: from, window: window}
}

// Send creates an SMS with the code for the contact phone number.
// The Twilio SDK does not take a context; cancellation is handled at the
// HTTP server level.
func (d *TwilioDispatcher) Send(_ context.Context, code int, contactHandle string) error {
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(strings.TrimSpace(contactHandle))
	params.SetFrom(d.from)
	params.SetBody(messageBody(code, int(d.window.Minutes())))

	_, err := d.api.CreateMessage(params)
	return err
}
