package main

import (
	"context"
	"encoding/json"
	"errors"
	"inkbook/src/db"
	"inkbook/src/lib"
	"inkbook/src/models"
	"inkbook/src/types"
	"inkbook/src/utils"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func waitlistCORS(ctx *gin.Context) {
	ctx.Header("Access-Control-Allow-Origin", "*")
	ctx.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	ctx.Header("Access-Control-Allow-Headers", "Content-Type")
}

// parseWaitlistBody accepts both plain JSON objects and JSON objects
// that arrive string-encoded (the landing page posts both shapes).
func parseWaitlistBody(raw []byte) (*types.JoinWaitlistRequestBody, error) {
	var body types.JoinWaitlistRequestBody
	if err := json.Unmarshal(raw, &body); err != nil {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil, errors.New("malformed request body")
		}
		if err := json.Unmarshal([]byte(encoded), &body); err != nil {
			return nil, errors.New("malformed request body")
		}
	}
	body.Email = strings.TrimSpace(strings.ToLower(body.Email))
	if !utils.ValidateEmail(body.Email) {
		return nil, errors.New("a valid email address is required")
	}
	return &body, nil
}

func waitlistRoutes(g *gin.Engine) {
	wl := g.Group("/api/waitlist")
	wl.
		OPTIONS("", func(ctx *gin.Context) {
			waitlistCORS(ctx)
			ctx.Status(http.StatusNoContent)
		}).
		GET("", func(ctx *gin.Context) {
			waitlistCORS(ctx)
			rd := lib.GetRedisClient()
			if rd != nil {
				if cached := rd.Get(context.Background(), lib.WaitlistCountKey).Val(); cached != "" {
					ctx.Header("Content-Type", "application/json")
					ctx.String(http.StatusOK, `{"count":%s}`, cached)
					return
				}
			}
			var count int64
			db := db.GetDb()
			if err := db.Model(&models.WaitlistEntry{}).Count(&count).Error; err != nil {
				log.Printf("Error counting waitlist entries: %s\n", err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			if rd != nil {
				go rd.SetEx(context.Background(), lib.WaitlistCountKey, count, 5*time.Minute)
			}
			ctx.JSON(http.StatusOK, gin.H{"count": count})
		}).
		POST("", func(ctx *gin.Context) {
			waitlistCORS(ctx)
			raw, err := io.ReadAll(ctx.Request.Body)
			if err != nil {
				ctx.Status(http.StatusServiceUnavailable)
				return
			}
			body, err := parseWaitlistBody(raw)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			entry := models.WaitlistEntry{
				Email:  body.Email,
				Source: body.Source,
			}
			db := db.GetDb()
			if err := db.Transaction(func(tx *gorm.DB) error {
				return tx.
					Clauses(clause.OnConflict{
						Columns:   []clause.Column{{Name: "email"}},
						DoNothing: true,
					}).
					Create(&entry).
					Error
			}); err != nil {
				log.Printf("Error joining waitlist: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if rd := lib.GetRedisClient(); rd != nil {
				go rd.Del(context.Background(), lib.WaitlistCountKey)
			}
			ctx.JSON(http.StatusCreated, gin.H{"ok": true})
		})
}
