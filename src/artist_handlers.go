package main

import (
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

func artistHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/artists/:id/slots", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var query types.SlotsQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			day, err := time.Parse("2006-01-02", query.Date)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			duration := time.Duration(query.DurationMinutes) * time.Minute

			db := db.GetDb()
			var intervals []models.Availability
			var bookings []models.Booking
			err = db.Transaction(func(tx *gorm.DB) error {
				if err := tx.
					Where(&models.Availability{ArtistID: params.ID}).
					Find(&intervals).
					Error; err != nil {
					return err
				}
				dayEnd := day.Add(24 * time.Hour)
				return tx.
					Model(&models.Booking{}).
					Where("artist_id = ? AND status IN (?) AND start_at < ? AND end_at > ?",
						params.ID,
						[]types.BookingStatus{types.BOOKING_PENDING, types.BOOKING_BOOKED},
						dayEnd, day).
					Find(&bookings).
					Error
			})
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			busy := make([]utils.TimeRange, 0, len(bookings))
			for _, b := range bookings {
				busy = append(busy, utils.TimeRange{StartAt: b.StartAt, EndAt: b.EndAt})
			}
			slots := utils.ComputeOpenSlots(day, duration, time.Now().UTC(), intervals, busy)
			ctx.JSON(http.StatusOK, gin.H{"data": slots, "count": len(slots)})
		}).
		PUT("/artists/availability", func(ctx *gin.Context) {
			role := types.UserRole(ctx.GetString("role"))
			if role != types.ROLE_ARTIST {
				ctx.Status(http.StatusForbidden)
				return
			}
			var body types.ReplaceAvailabilityRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			artistId := ctx.GetUint("id")
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.
					Where(&models.Availability{ArtistID: artistId}).
					Delete(&models.Availability{}).
					Error; err != nil {
					return err
				}
				for _, iv := range body.Intervals {
					row := models.Availability{
						ArtistID:    artistId,
						Weekday:     iv.Weekday,
						StartMinute: iv.StartMinute,
						EndMinute:   iv.EndMinute,
					}
					if err := tx.Create(&row).Error; err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				log.Printf("Error replacing availability for artist %d: %s\n", artistId, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		GET("/artists/:id/services", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var services []models.ArtistService
			db := db.GetDb()
			if err := db.
				Where(&models.ArtistService{ArtistID: params.ID, Active: true}).
				Find(&services).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": services, "count": len(services)})
		}).
		POST("/artists/services", func(ctx *gin.Context) {
			role := types.UserRole(ctx.GetString("role"))
			if role != types.ROLE_ARTIST {
				ctx.Status(http.StatusForbidden)
				return
			}
			var body types.CreateServiceRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			artistId := ctx.GetUint("id")
			service := models.ArtistService{
				ArtistID:        artistId,
				Name:            body.Name,
				Kind:            types.AppointmentType(body.Kind),
				DurationMinutes: body.DurationMinutes,
				PriceCents:      body.PriceCents,
				DepositCents:    body.DepositCents,
				Currency:        body.Currency,
				Active:          true,
			}
			db := db.GetDb()
			if err := db.Transaction(func(tx *gorm.DB) error {
				return tx.Create(&service).Error
			}); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"id": service.ID})
		}).
		POST("/artists/sync", func(ctx *gin.Context) {
			var body types.SyncProfileRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			updates := utils.BuildSyncPayload(body.Name, body.Username, body.Bio)
			db := db.GetDb()
			if err := db.Transaction(func(tx *gorm.DB) error {
				return tx.
					Model(&models.User{}).
					Where("id = ?", userId).
					Updates(updates).
					Error
			}); err != nil {
				log.Printf("Error syncing profile for user %d: %s\n", userId, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"username_slug": updates["username_slug"]})
		})
	return g
}
