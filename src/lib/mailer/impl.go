package mailer

import (
	"fmt"
	"inkbook/src/lib"
	"inkbook/src/types"
	"os"
)

// NewMailerMessage queues an outbound email on the mail topic. The
// worker in src/common drains it and hands the payload to SMTP.
func NewMailerMessage(input *lib.SendMailInput) error {
	emailQueue := os.Getenv("EMAIL_QUEUE")
	if emailQueue == "" {
		emailQueue = "OutboundEmails"
	}
	emailBody := types.JSONB{
		"from":      input.From,
		"from-name": input.FromName,
		"to":        input.To,
		"cc":        input.Cc,
		"bcc":       input.Bcc,
		"reply-to":  input.ReplyTo,
		"body":      input.Body,
		"html":      input.Html,
		"subject":   input.Subject,
	}
	if err := lib.KafkaProduceMessage("emails", emailQueue, emailBody); err != nil {
		return fmt.Errorf("error sending message to queue: %s", err.Error())
	}
	return nil
}
