package mail

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
)

// SendGridMailer sends the post-sign-up welcome email. It implements
// usecase.WelcomeMailer.
type SendGridMailer struct {
	apiKey string
	from   string
	log    *logrus.Entry
}

func NewSendGridMailer(apiKey, from string, log *logrus.Entry) *SendGridMailer {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &SendGridMailer{
		apiKey: apiKey,
		from:   from,
		log:    log.WithField("component", "sendgrid_mailer"),
	}
}

func (m *SendGridMailer) SendWelcome(ctx context.Context, email, name string) error {
	if m.apiKey == "" {
		return errors.New("sendgrid_mailer: api key is empty")
	}
	if email == "" {
		return errors.New("sendgrid_mailer: to address is empty")
	}

	display := name
	if display == "" {
		display = "there"
	}

	body := fmt.Sprintf("Hi %s,\n\nWelcome to the store! Your account is ready.\n", display)
	message := sgmail.NewSingleEmail(
		sgmail.NewEmail("Storefront", m.from),
		"Welcome to the store",
		sgmail.NewEmail(name, email),
		body,
		fmt.Sprintf("<pre>%s</pre>", body),
	)

	client := sendgrid.NewSendClient(m.apiKey)
	resp, err := client.Send(message)
	if err != nil {
		return errors.Wrap(err, "sendgrid_mailer: send")
	}
	if resp.StatusCode >= 400 {
		return errors.Errorf("sendgrid_mailer: send failed: status=%d body=%s", resp.StatusCode, resp.Body)
	}

	m.log.WithFields(logrus.Fields{"to": email, "status": resp.StatusCode}).Info("welcome mail sent")
	return nil
}
