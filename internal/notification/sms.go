package notification

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"medibook/config"
)

type SMSSender struct {
	client *twilio.RestClient
	from   string
}

func NewSMSSender(cfg config.TwilioConfig) *SMSSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &SMSSender{
		client: client,
		from:   cfg.FromNumber,
	}
}

func (s *SMSSender) Send(_ context.Context, to, _ string, body string) error {
	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("ошибка отправки SMS: %w", err)
	}

	return nil
}
