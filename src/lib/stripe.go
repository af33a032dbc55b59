package lib

import (
	"context"
	"os"

	"github.com/stripe/stripe-go/v82"
)

var stripeClient *stripe.Client

func GetStripeClient() *stripe.Client {
	if stripeClient != nil {
		return stripeClient
	}
	apiKey := os.Getenv("STRIPE_SECRET_KEY")
	sc := stripe.NewClient(apiKey)
	stripeClient = sc

	return sc
}

// NewStripeClient Replace the stripe instance with a custom client implementation
func NewStripeClient(c *stripe.Client) {
	stripeClient = c
}

func CreateRefund(paymentIntentId string, reason *string) (*stripe.Refund, error) {
	sc := GetStripeClient()
	params := &stripe.RefundCreateParams{
		PaymentIntent: stripe.String(paymentIntentId),
	}
	if reason != nil {
		params.AddMetadata("reason", *reason)
	}
	return sc.V1Refunds.Create(context.Background(), params)
}
