package main

import (
	"encoding/json"
	"inkbook/src/db"
	"inkbook/src/models"
	"inkbook/src/types"
	"inkbook/src/utils"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"gorm.io/gorm"
)

func stripeWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/stripe", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		whsecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		event, err := webhook.ConstructEvent(payload, ctx.GetHeader("Stripe-Signature"), whsecret)
		if err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			ctx.Status(http.StatusBadRequest)
			return
		}
		log.Printf("[StripeEvent] %s\n", event.Type)
		switch event.Type {
		case "checkout.session.completed":
			var cs stripe.CheckoutSession
			err := json.Unmarshal(event.Data.Raw, &cs)
			if err != nil {
				log.Printf("[Stripe] Error parsing CheckoutSession: %s\n", err.Error())
				break
			}
			log.Printf("[CheckoutSession] ID: %s %s\n", cs.ID, cs.Status)
			md := cs.Metadata
			requestId := md["requestId"]
			if requestId == "" {
				break
			}
			var piId *string
			if cs.PaymentIntent != nil {
				piId = &cs.PaymentIntent.ID
			}
			go func() {
				db := db.GetDb()
				if err := db.Transaction(func(tx *gorm.DB) error {
					return tx.
						Model(&models.Transaction{}).
						Where("reference_id = ?", requestId).
						Updates(&models.Transaction{
							CheckoutSessionId: &cs.ID,
							PaymentIntentId:   piId,
						}).
						Error
				}); err != nil {
					log.Printf("Error updating Transaction [%s]: %s\n", requestId, err.Error())
					return
				}
				if cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
					if err := utils.ConfirmBookingPaid(requestId, piId, nil); err != nil {
						log.Printf("Error confirming booking for request [%s]: %s\n", requestId, err.Error())
					}
				}
			}()
		case "checkout.session.expired":
			var cs stripe.CheckoutSession
			err := json.Unmarshal(event.Data.Raw, &cs)
			if err != nil {
				log.Printf("[Stripe] Error parsing CheckoutSession: %s\n", err.Error())
				break
			}
			log.Printf("[CheckoutSession] ID: %s %s\n", cs.ID, cs.Status)
			requestId := cs.Metadata["requestId"]
			if requestId == "" {
				break
			}
			go func() {
				db := db.GetDb()
				if err := db.Transaction(func(tx *gorm.DB) error {
					return tx.
						Model(&models.Transaction{}).
						Where("reference_id = ?", requestId).
						Where("status = ?", types.TRANSACTION_PENDING).
						Update("status", types.TRANSACTION_CANCELED).
						Error
				}); err != nil {
					log.Printf("Error marking Transaction [%s] canceled: %s\n", requestId, err.Error())
				}
			}()
		case "payment_intent.succeeded":
			var pi stripe.PaymentIntent
			err := json.Unmarshal(event.Data.Raw, &pi)
			if err != nil {
				log.Printf("[Stripe] Error parsing PaymentIntent: %s\n", err.Error())
				break
			}
			log.Printf("[PaymentIntent] ID: %s %s\n", pi.ID, pi.Status)
			md := pi.Metadata
			requestId := md["requestId"]
			if requestId == "" {
				break
			}
			var chargeId *string
			if pi.LatestCharge != nil {
				chargeId = &pi.LatestCharge.ID
			}
			go func() {
				if err := utils.ConfirmBookingPaid(requestId, &pi.ID, chargeId); err != nil {
					log.Printf("Error confirming booking for request [%s]: %s\n", requestId, err.Error())
				}
			}()
		case "payment_intent.payment_failed":
			var pi stripe.PaymentIntent
			err := json.Unmarshal(event.Data.Raw, &pi)
			if err != nil {
				log.Printf("[Stripe] Error parsing PaymentIntent: %s\n", err.Error())
				break
			}
			requestId := pi.Metadata["requestId"]
			if requestId == "" {
				break
			}
			go func() {
				db := db.GetDb()
				if err := db.Transaction(func(tx *gorm.DB) error {
					return tx.
						Model(&models.Transaction{}).
						Where("reference_id = ?", requestId).
						Where("status = ?", types.TRANSACTION_PENDING).
						Updates(&models.Transaction{
							Status:          types.TRANSACTION_FAILED,
							PaymentIntentId: &pi.ID,
						}).
						Error
				}); err != nil {
					log.Printf("Error marking Transaction [%s] failed: %s\n", requestId, err.Error())
				}
			}()
		case "charge.refunded":
			var ch stripe.Charge
			err := json.Unmarshal(event.Data.Raw, &ch)
			if err != nil {
				log.Printf("[Stripe] Error parsing Charge: %s\n", err.Error())
				break
			}
			log.Printf("[Charge] ID: %s refunded=%v\n", ch.ID, ch.Refunded)
			piId := ""
			if ch.PaymentIntent != nil {
				piId = ch.PaymentIntent.ID
			}
			go func() {
				var txn models.Transaction
				db := db.GetDb()
				if err := db.Transaction(func(tx *gorm.DB) error {
					err := tx.
						Model(&models.Transaction{}).
						Where("charge_id = ? OR payment_intent_id = ?", ch.ID, piId).
						First(&txn).
						Error
					if err != nil {
						return err
					}
					refundIds := txn.RefundIds
					if refundIds == nil {
						refundIds = types.JSONB{}
					}
					if ch.Refunds != nil {
						for _, re := range ch.Refunds.Data {
							refundIds[re.ID] = re.Status
						}
					}
					return tx.
						Model(&models.Transaction{}).
						Where("id = ?", txn.ID).
						Updates(map[string]any{
							"status":     types.TRANSACTION_REFUNDED,
							"charge_id":  ch.ID,
							"refund_ids": refundIds,
						}).
						Error
				}); err != nil {
					log.Printf("Error recording refund for charge [%s]: %s\n", ch.ID, err.Error())
				}
			}()
		}
		ctx.Status(http.StatusNoContent)
	})
	return apiv1
}
