package main

import (
	"inkbook/src/db"
	"inkbook/src/models"
	"inkbook/src/types"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func intakeHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/bookings/:id/intake", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.SubmitIntakeFormRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var booking models.Booking
				if err := tx.
					Where(&models.Booking{ID: params.ID, ClientID: userId}).
					First(&booking).
					Error; err != nil {
					return err
				}
				form := models.IntakeForm{
					BookingID:             params.ID,
					HealthConditions:      body.HealthConditions,
					Medications:           body.Medications,
					Allergies:             body.Allergies,
					AgeVerification:       body.AgeVerification,
					HealthDisclosure:      body.HealthDisclosure,
					AftercareInstructions: body.AftercareInstructions,
					DepositPolicy:         body.DepositPolicy,
					CancellationPolicy:    body.CancellationPolicy,
				}
				// Resubmission replaces the previous answers.
				return tx.
					Clauses(clause.OnConflict{
						Columns: []clause.Column{{Name: "booking_id"}},
						UpdateAll: true,
					}).
					Create(&form).
					Error
			})
			if err != nil {
				log.Printf("Error saving intake form for Booking [%d]: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		GET("/bookings/:id/intake", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var form models.IntakeForm
			if err := db.
				Joins("JOIN bookings ON bookings.id = intake_forms.booking_id").
				Where("intake_forms.booking_id = ? AND (bookings.client_id = ? OR bookings.artist_id = ?)", params.ID, userId, userId).
				First(&form).
				Error; err != nil {
				ctx.Status(http.StatusNotFound)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": form})
		})
	return g
}
