package main

import (
	"errors"
	"inkbook/src/db"
	"inkbook/src/models"
	"inkbook/src/types"
	"inkbook/src/utils"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/bookings", func(ctx *gin.Context) {
			var query struct {
				ArtistID uint   `form:"artist_id" binding:"required"`
				Date     string `form:"date" binding:"required"`
			}
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			day, err := time.Parse("2006-01-02", query.Date)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			dayEnd := day.Add(24 * time.Hour)
			db := db.GetDb()
			var bookings []models.Booking
			err = db.Transaction(func(tx *gorm.DB) error {
				return tx.
					Model(&models.Booking{}).
					Where("artist_id = ? AND start_at >= ? AND start_at < ?", query.ArtistID, day, dayEnd).
					Order("start_at ASC").
					Preload("Service").
					Find(&bookings).
					Error
			})
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bookings, "count": len(bookings)})
		}).
		GET("/bookings/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var booking models.Booking
			if err := db.
				Model(&models.Booking{}).
				Where("id = ? AND (client_id = ? OR artist_id = ?)", params.ID, userId, userId).
				Preload("Service").
				Preload("Artist").
				Preload("IntakeForm").
				Preload("Transaction").
				First(&booking).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		POST("/bookings", func(ctx *gin.Context) {
			var body types.CreateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			clientId := ctx.GetUint("id")
			bookingId, err := utils.CreateNewBooking(&body, clientId)
			if err != nil {
				log.Printf("Error creating Booking: %s\n", err.Error())
				status := http.StatusBadRequest
				if errors.Is(err, utils.ErrSlotConflict) || errors.Is(err, utils.ErrCooldownActive) {
					status = http.StatusConflict
				}
				ctx.JSON(status, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"id": bookingId})
		}).
		POST("/bookings/:id/cancel", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			role := types.UserRole(ctx.GetString("role"))
			if err := utils.CancelBooking(params.ID, userId, role); err != nil {
				log.Printf("Could not complete request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		POST("/bookings/:id/complete", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			role := types.UserRole(ctx.GetString("role"))
			if role != types.ROLE_ARTIST {
				ctx.Status(http.StatusForbidden)
				return
			}
			artistId := ctx.GetUint("id")
			if err := utils.CompleteBooking(params.ID, artistId); err != nil {
				log.Printf("Could not complete request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
