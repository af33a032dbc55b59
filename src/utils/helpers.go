package utils

import (
	"context"
	"errors"
	"fmt"
	"inkbook/src/common"
	"inkbook/src/config"
	"inkbook/src/db"
	"inkbook/src/lib"
	"inkbook/src/lib/mailer"
	"inkbook/src/models"
	"inkbook/src/types"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrSlotConflict        = errors.New("requested time overlaps an existing booking")
	ErrCooldownActive      = errors.New("a booking cooldown is active for this artist")
	ErrOutsideAvailability = errors.New("requested time is outside the artist's availability")
	ErrIntakeRequired      = errors.New("a completed intake form with all consents is required")
	ErrNotRefundable       = errors.New("booking is outside the refund window")
)

func IsProd() bool {
	return os.Getenv("API_ENV") == string(types.Production)
}

// CooldownActive reports whether the client is still inside a
// cancellation cooldown for the artist.
func CooldownActive(tx *gorm.DB, userId uint, artistId uint, now time.Time) (bool, error) {
	var count int64
	err := tx.
		Model(&models.BookingCooldown{}).
		Where("user_id = ? AND artist_id = ? AND expires_at > ?", userId, artistId, now).
		Count(&count).
		Error
	return count > 0, err
}

func slotInsideAvailability(intervals []models.Availability, startAt time.Time, endAt time.Time) bool {
	midnight := time.Date(startAt.Year(), startAt.Month(), startAt.Day(), 0, 0, 0, 0, startAt.Location())
	weekday := int(midnight.Weekday())
	for _, iv := range intervals {
		if iv.Weekday != weekday {
			continue
		}
		open := midnight.Add(time.Duration(iv.StartMinute) * time.Minute)
		close := midnight.Add(time.Duration(iv.EndMinute) * time.Minute)
		if !startAt.Before(open) && !endAt.After(close) {
			return true
		}
	}
	return false
}

// CreateNewBooking validates the requested slot against availability,
// live bookings and cooldowns, then creates a pending booking holding
// the slot until the deposit is paid. The hold is released by a
// scheduled expiry job.
func CreateNewBooking(params *types.CreateBookingRequestBody, clientId uint) (uint, error) {
	startAt, err := time.Parse(config.TIME_PARSE_FORMAT, params.StartAt)
	if err != nil {
		log.Printf("Error parsing start_at: %s\n", err.Error())
		return 0, err
	}
	endAt, err := time.Parse(config.TIME_PARSE_FORMAT, params.EndAt)
	if err != nil {
		log.Printf("Error parsing end_at: %s\n", err.Error())
		return 0, err
	}

	booking := models.Booking{
		ArtistID:        params.ArtistID,
		ClientID:        clientId,
		ServiceID:       params.ServiceID,
		StartAt:         startAt,
		EndAt:           endAt,
		Note:            params.Note,
		AppointmentType: types.AppointmentType(params.AppointmentType),
		Status:          types.BOOKING_PENDING,
	}

	db := db.GetDb()
	err = db.Transaction(func(tx *gorm.DB) error {
		var artist models.User
		if err := tx.
			Where(&models.User{ID: params.ArtistID, Role: types.ROLE_ARTIST}).
			First(&artist).
			Error; err != nil {
			return fmt.Errorf("artist %d does not exist", params.ArtistID)
		}
		now := time.Now()
		active, err := CooldownActive(tx, clientId, params.ArtistID, now)
		if err != nil {
			return err
		}
		if active {
			return ErrCooldownActive
		}

		var intervals []models.Availability
		if err := tx.
			Where(&models.Availability{ArtistID: params.ArtistID}).
			Find(&intervals).
			Error; err != nil {
			return err
		}
		if !slotInsideAvailability(intervals, startAt, endAt) {
			return ErrOutsideAvailability
		}

		// Lock out concurrent holds for the same artist before the
		// overlap check.
		var artistRow models.User
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", params.ArtistID).
			First(&artistRow).
			Error; err != nil {
			return err
		}
		var overlapping int64
		if err := tx.
			Model(&models.Booking{}).
			Where("artist_id = ? AND status IN (?) AND start_at < ? AND end_at > ?",
				params.ArtistID,
				[]types.BookingStatus{types.BOOKING_PENDING, types.BOOKING_BOOKED},
				endAt, startAt).
			Count(&overlapping).
			Error; err != nil {
			return err
		}
		if overlapping > 0 {
			return ErrSlotConflict
		}
		if params.ServiceID != nil {
			var service models.ArtistService
			if err := tx.
				Where(&models.ArtistService{ID: *params.ServiceID, ArtistID: params.ArtistID}).
				First(&service).
				Error; err != nil {
				return fmt.Errorf("service %d does not exist for artist %d", *params.ServiceID, params.ArtistID)
			}
			if !service.Active {
				return fmt.Errorf("service %d is not bookable", service.ID)
			}
			if service.Kind == types.APPOINTMENT_TATTOO_SESSION &&
				endAt.Sub(startAt) != time.Duration(service.DurationMinutes)*time.Minute {
				return fmt.Errorf("requested slot does not match the %d minute duration of service %d", service.DurationMinutes, service.ID)
			}
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	// Release the hold if the deposit never arrives.
	go func() {
		bookingId := booking.ID
		runsAt := time.Now().Add(config.BOOKING_HOLD_TTL)
		payloadId := uuid.NewString()
		jobTask := models.JobTask{
			Name:      fmt.Sprintf("Booking_%d_HoldExpiry", bookingId),
			JobType:   "OneTimeJobStartDateTime",
			RunsAt:    runsAt,
			PayloadID: payloadId,
			Payload: types.JSONB{
				"payloadId": payloadId,
				"id":        int64(bookingId),
				"topic":     common.BookingLifecycleTopic,
				"table":     "bookings",
			},
			Source: "Bookings",
			Topic:  common.BookingLifecycleTopic,
		}
		id, err := jobTask.CreateAndEnqueueJobTask(ExpireBookingHold, bookingId)
		if err != nil {
			log.Printf("Error creating job for Booking: id=%d error=%s\n", bookingId, err.Error())
			return
		}
		log.Printf("Created job for Booking[%d] with ID %s\n", bookingId, id)
	}()

	go common.PublishBookingEvent("created", booking.ID, types.JSONB{
		"artist_id": booking.ArtistID,
		"client_id": booking.ClientID,
		"start_at":  booking.StartAt,
	})

	return booking.ID, nil
}

// ExpireBookingHold releases the slot of a booking whose deposit never
// arrived. Paid or otherwise-settled bookings are left alone.
func ExpireBookingHold(bookingId uint) {
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.
			Where(&models.Booking{ID: bookingId}).
			First(&booking).
			Error; err != nil {
			return err
		}
		if booking.Status != types.BOOKING_PENDING {
			return nil
		}
		if err := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: bookingId}).
			Update("status", types.BOOKING_EXPIRED).
			Error; err != nil {
			return err
		}
		if booking.TransactionID != nil {
			if err := tx.
				Model(&models.Transaction{}).
				Where("id = ? AND status = ?", *booking.TransactionID, types.TRANSACTION_PENDING).
				Update("status", types.TRANSACTION_CANCELED).
				Error; err != nil {
				return err
			}
		}
		go common.PublishBookingEvent("expired", bookingId, types.JSONB{
			"artist_id": booking.ArtistID,
		})
		return nil
	})
	if err != nil {
		log.Printf("Error expiring hold for Booking [%d]: %s\n", bookingId, err.Error())
	}
}

// requireIntakeConsent enforces the tattoo-session invariant: the form
// must exist with every consent checked before the booking can be
// confirmed or paid for.
func requireIntakeConsent(tx *gorm.DB, booking *models.Booking) error {
	if booking.AppointmentType != types.APPOINTMENT_TATTOO_SESSION {
		return nil
	}
	var form models.IntakeForm
	if err := tx.
		Where(&models.IntakeForm{BookingID: booking.ID}).
		First(&form).
		Error; err != nil {
		return ErrIntakeRequired
	}
	if !form.Consented() {
		return ErrIntakeRequired
	}
	return nil
}

// CreateDepositCheckout starts (or resumes) the deposit payment for a
// pending booking. Zero-deposit services confirm immediately and
// return mode "free". The operation is idempotent per booking: one
// live transaction, whose checkout URL is returned on repeat calls.
func CreateDepositCheckout(bookingId uint, clientId uint, label string) (url *string, mode string, err error) {
	db := db.GetDb()
	var checkoutURL *string
	err = db.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&models.Booking{ID: bookingId, ClientID: clientId}).
			Preload("Service").
			Preload("Client").
			Preload("Artist").
			First(&booking).
			Error; err != nil {
			return err
		}
		if booking.Status != types.BOOKING_PENDING {
			return fmt.Errorf("booking %d is not awaiting payment", bookingId)
		}
		if err := requireIntakeConsent(tx, &booking); err != nil {
			return err
		}

		var depositCents int64
		currency := "usd"
		if booking.Service != nil {
			depositCents = booking.Service.DepositCents
			currency = booking.Service.Currency
		}
		if depositCents == 0 {
			if err := tx.
				Model(&models.Booking{}).
				Where(&models.Booking{ID: bookingId}).
				Update("status", types.BOOKING_BOOKED).
				Error; err != nil {
				return err
			}
			mode = "free"
			go common.PublishBookingEvent("confirmed", bookingId, types.JSONB{
				"artist_id": booking.ArtistID,
			})
			return nil
		}

		// Resume the live transaction instead of opening a second one.
		if booking.TransactionID != nil {
			var txn models.Transaction
			if err := tx.
				Where("id = ? AND status = ?", *booking.TransactionID, types.TRANSACTION_PENDING).
				First(&txn).
				Error; err == nil {
				if txn.CheckoutSessionId != nil {
					sc := lib.GetStripeClient()
					data, err := sc.V1CheckoutSessions.Retrieve(context.Background(), *txn.CheckoutSessionId, nil)
					if err == nil && data.Status == stripe.CheckoutSessionStatusOpen {
						checkoutURL = &data.URL
						mode = "checkout"
						return nil
					}
				}
				// The prior session can no longer complete. Settle its
				// transaction before opening a replacement so the booking
				// keeps a single live transaction.
				if err := tx.
					Model(&models.Transaction{}).
					Where("id = ? AND status = ?", txn.ID, types.TRANSACTION_PENDING).
					Update("status", types.TRANSACTION_CANCELED).
					Error; err != nil {
					return err
				}
			}
		}

		requestId := uuid.NewString()
		successUrl := fmt.Sprintf("%s/checkout/callback/success", os.Getenv("APP_HOST"))
		name := label
		if name == "" {
			name = "Booking deposit"
		}
		createParams := stripe.CheckoutSessionCreateParams{
			SuccessURL: stripe.String(successUrl),
			UIMode:     stripe.String("hosted"),
			Mode:       stripe.String("payment"),
			LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
				{
					PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
						Currency:   stripe.String(currency),
						UnitAmount: stripe.Int64(depositCents),
						ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
							Name: stripe.String(name),
						},
					},
					Quantity: stripe.Int64(1),
				},
			},
			Metadata: map[string]string{
				"requestId": requestId,
				"bookingId": fmt.Sprint(bookingId),
				"userId":    fmt.Sprint(clientId),
			},
		}
		if booking.Artist != nil && booking.Artist.StripeAccountId != nil {
			createParams.Params = stripe.Params{
				StripeAccount: booking.Artist.StripeAccountId,
			}
		}
		sc := lib.GetStripeClient()
		checkoutSession, err := sc.V1CheckoutSessions.Create(context.Background(), &createParams)
		if err != nil {
			log.Printf("CreateDepositCheckout failed: %s\n", err.Error())
			return err
		}
		txn := &models.Transaction{
			BookingID:         bookingId,
			AmountCents:       depositCents,
			Currency:          currency,
			Status:            types.TRANSACTION_PENDING,
			ReferenceID:       requestId,
			CheckoutSessionId: &checkoutSession.ID,
		}
		if err := tx.Create(txn).Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: bookingId}).
			Update("transaction_id", txn.ID).
			Error; err != nil {
			return err
		}
		rd := lib.GetRedisClient()
		if rd != nil {
			if _, err := rd.SetEx(context.Background(), lib.CheckoutRequestKey(requestId), txn.ID.String(), 10*time.Minute).Result(); err != nil {
				log.Printf("Error caching value [%s]: %s\n", txn.ID.String(), err.Error())
			}
		}
		checkoutURL = &checkoutSession.URL
		mode = "checkout"
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return checkoutURL, mode, nil
}

// ConfirmBookingPaid settles the transaction referenced by a webhook
// event and confirms the booking it belongs to.
func ConfirmBookingPaid(requestId string, paymentIntentId *string, chargeId *string) error {
	db := db.GetDb()
	return db.Transaction(func(tx *gorm.DB) error {
		var txn models.Transaction
		if err := tx.
			Model(&models.Transaction{}).
			Where("reference_id = ?", requestId).
			First(&txn).
			Error; err != nil {
			return err
		}
		var booking models.Booking
		if err := tx.
			Where(&models.Booking{ID: txn.BookingID}).
			Preload("Client").
			First(&booking).
			Error; err != nil {
			return err
		}
		if err := requireIntakeConsent(tx, &booking); err != nil {
			log.Printf("Refusing to confirm Booking [%d]: %s\n", booking.ID, err.Error())
			return err
		}
		updates := &models.Transaction{
			Status:          types.TRANSACTION_PAID,
			PaymentIntentId: paymentIntentId,
			ChargeId:        chargeId,
		}
		if err := tx.
			Model(&models.Transaction{}).
			Where("id = ? AND status IN (?)", txn.ID, []types.TransactionStatus{types.TRANSACTION_PENDING}).
			Updates(updates).
			Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.Booking{}).
			Where("id = ? AND status = ?", booking.ID, types.BOOKING_PENDING).
			Update("status", types.BOOKING_BOOKED).
			Error; err != nil {
			return err
		}
		if booking.Client != nil {
			go func(email string, startAt time.Time) {
				if err := mailer.NewMailerMessage(&lib.SendMailInput{
					From:     os.Getenv("SMTP_FROM"),
					FromName: "noreply",
					Subject:  "Your appointment is confirmed",
					To:       []string{email},
					Body: fmt.Sprintf(`
					<p>Your deposit was received.</p>
					<p>Your appointment on %s is confirmed.</p>
				`, startAt.Format(time.RFC1123)),
					Html: true,
				}); err != nil {
					log.Printf("Could not send confirmation email to [%s]: %s\n", email, err.Error())
				}
			}(booking.Client.Email, booking.StartAt)
		}
		go common.PublishBookingEvent("confirmed", booking.ID, types.JSONB{
			"artist_id": booking.ArtistID,
		})
		return nil
	})
}

// CancelBooking cancels a live booking. Client-initiated cancellations
// start a cooldown against the artist; paid deposits are refunded when
// still inside the refund window.
func CancelBooking(bookingId uint, actorId uint, actorRole types.UserRole) error {
	db := db.GetDb()
	return db.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.
			Where(&models.Booking{ID: bookingId}).
			Preload("Client").
			First(&booking).
			Error; err != nil {
			return err
		}
		if booking.ClientID != actorId && booking.ArtistID != actorId {
			return errors.New("not enough permissions to perform this action")
		}
		if !booking.Live() {
			return fmt.Errorf("booking %d is not cancellable in status %s", bookingId, booking.Status)
		}
		if err := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: bookingId}).
			Update("status", types.BOOKING_CANCELED).
			Error; err != nil {
			return err
		}
		now := time.Now()
		clientInitiated := actorId == booking.ClientID && actorRole != types.ROLE_ARTIST
		if clientInitiated {
			cooldown := models.BookingCooldown{
				UserID:      booking.ClientID,
				ArtistID:    booking.ArtistID,
				BookingID:   &bookingId,
				CancelledAt: now,
				ExpiresAt:   now.Add(config.COOLDOWN_PERIOD),
			}
			if err := tx.Create(&cooldown).Error; err != nil {
				return err
			}
		}
		if booking.TransactionID != nil {
			var txn models.Transaction
			if err := tx.
				Where("id = ?", *booking.TransactionID).
				First(&txn).
				Error; err == nil {
				switch txn.Status {
				case types.TRANSACTION_PENDING:
					if err := tx.
						Model(&models.Transaction{}).
						Where("id = ?", txn.ID).
						Update("status", types.TRANSACTION_CANCELED).
						Error; err != nil {
						return err
					}
				case types.TRANSACTION_PAID:
					if IsRefundEligible(booking.StartAt, now) && txn.PaymentIntentId != nil {
						refund, err := lib.CreateRefund(*txn.PaymentIntentId, nil)
						if err != nil {
							log.Printf("Error refunding Booking [%d]: %s\n", bookingId, err.Error())
							return err
						}
						refundIds := txn.RefundIds
						if refundIds == nil {
							refundIds = types.JSONB{}
						}
						refundIds[refund.ID] = refund.Status
						if err := tx.
							Model(&models.Transaction{}).
							Where("id = ?", txn.ID).
							Updates(&models.Transaction{
								Status:    types.TRANSACTION_REFUNDED,
								RefundIds: refundIds,
							}).
							Error; err != nil {
							return err
						}
					}
				}
			}
		}
		if booking.Client != nil {
			go func(email string) {
				if err := mailer.NewMailerMessage(&lib.SendMailInput{
					From:     os.Getenv("SMTP_FROM"),
					FromName: "noreply",
					Subject:  "Your appointment was cancelled",
					To:       []string{email},
					Body:     "<p>Your appointment has been cancelled.</p>",
					Html:     true,
				}); err != nil {
					log.Printf("Could not send cancellation email to [%s]: %s\n", email, err.Error())
				}
			}(booking.Client.Email)
		}
		go common.PublishBookingEvent("cancelled", bookingId, types.JSONB{
			"artist_id": booking.ArtistID,
		})
		return nil
	})
}

// RefundByBooking issues a refund for the paid deposit of a booking,
// subject to the refund window.
func RefundByBooking(bookingId uint, actorId uint, reason *string) error {
	db := db.GetDb()
	return db.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.
			Where(&models.Booking{ID: bookingId}).
			First(&booking).
			Error; err != nil {
			return err
		}
		if booking.ClientID != actorId && booking.ArtistID != actorId {
			return errors.New("not enough permissions to perform this action")
		}
		if !IsRefundEligible(booking.StartAt, time.Now()) {
			return ErrNotRefundable
		}
		if booking.TransactionID == nil {
			return fmt.Errorf("no transaction found for Booking [%d]", bookingId)
		}
		var txn models.Transaction
		if err := tx.
			Where("id = ? AND status = ?", *booking.TransactionID, types.TRANSACTION_PAID).
			First(&txn).
			Error; err != nil {
			return err
		}
		if txn.PaymentIntentId == nil {
			return fmt.Errorf("transaction %s has no captured payment", txn.ID)
		}
		refund, err := lib.CreateRefund(*txn.PaymentIntentId, reason)
		if err != nil {
			return err
		}
		refundIds := txn.RefundIds
		if refundIds == nil {
			refundIds = types.JSONB{}
		}
		refundIds[refund.ID] = refund.Status
		if err := tx.
			Model(&models.Transaction{}).
			Where("id = ?", txn.ID).
			Updates(&models.Transaction{
				Status:    types.TRANSACTION_REFUNDED,
				RefundIds: refundIds,
			}).
			Error; err != nil {
			return err
		}
		return nil
	})
}

// CompleteBooking marks a confirmed booking as completed. Artist only.
func CompleteBooking(bookingId uint, artistId uint) error {
	db := db.GetDb()
	return db.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.
			Where(&models.Booking{ID: bookingId, ArtistID: artistId}).
			First(&booking).
			Error; err != nil {
			return err
		}
		if booking.Status != types.BOOKING_BOOKED {
			return fmt.Errorf("booking %d cannot be completed in status %s", bookingId, booking.Status)
		}
		if err := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: bookingId}).
			Update("status", types.BOOKING_COMPLETED).
			Error; err != nil {
			return err
		}
		go common.PublishBookingEvent("completed", bookingId, types.JSONB{
			"artist_id": booking.ArtistID,
		})
		return nil
	})
}
