// Package notify delivers verification codes to user-controlled contact
// channels. The service layer depends only on the Dispatcher contract; the
// concrete provider is selected by configuration.
package notify

import (
	"context"
	"fmt"
)

// Dispatcher sends a verification code to a contact handle (a phone number
// in E.164 form). A non-nil error means delivery failed and may be retried;
// the code itself stays valid for its full window regardless.
type Dispatcher interface {
	Send(ctx context.Context, code int, contactHandle string) error
}

// messageBody renders the SMS text for a verification code.
func messageBody(code int, windowMinutes int) string {
	return fmt.Sprintf("Your verification code is %d. It will expire within %d minutes.", code, windowMinutes)
}
