package common

import (
	"encoding/json"
	"inkbook/src/lib"
	"inkbook/src/types"
	"log"
	"os"
)

const BookingLifecycleTopic = "BookingLifecycle"

// KafkaConsumers starts the background workers draining the broker
// topics: outbound email delivery and booking lifecycle fan-out.
func KafkaConsumers() {
	emailQueue := os.Getenv("EMAIL_QUEUE")
	if emailQueue == "" {
		emailQueue = "OutboundEmails"
	}
	if err := lib.KafkaConsumeTopic("mailworker", emailQueue, func(value []byte) {
		var payload types.JSONB
		if err := json.Unmarshal(value, &payload); err != nil {
			log.Printf("[%s]: Received invalid json body. Aborting\n", emailQueue)
			return
		}
		input := mailInputFromPayload(payload)
		if err := lib.SendMail(input); err != nil {
			log.Printf("Error delivering queued mail: %s\n", err.Error())
		}
	}); err != nil {
		log.Printf("Error starting consumer for %s: %s\n", emailQueue, err.Error())
	}

	go BookingLifecycleConsumer()
}

func mailInputFromPayload(payload types.JSONB) *lib.SendMailInput {
	input := &lib.SendMailInput{}
	if v, ok := payload["from"].(string); ok {
		input.From = v
	}
	if v, ok := payload["from-name"].(string); ok {
		input.FromName = v
	}
	if v, ok := payload["subject"].(string); ok {
		input.Subject = v
	}
	if v, ok := payload["body"].(string); ok {
		input.Body = v
	}
	if v, ok := payload["html"].(bool); ok {
		input.Html = v
	}
	if to, ok := payload["to"].([]any); ok {
		for _, t := range to {
			if s, ok := t.(string); ok {
				input.To = append(input.To, s)
			}
		}
	}
	return input
}
