package main

import (
	"inkbook/src/db"
	"inkbook/src/models"
	"inkbook/src/types"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func parseParticipantParam(ctx *gin.Context) (uint, error) {
	idParam := ctx.Params.ByName("participant_id")
	atoi, err := strconv.Atoi(idParam)
	if err != nil {
		return 0, err
	}
	return uint(atoi), nil
}

func messageHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/conversations", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var messages []models.Message
			err := db.Transaction(func(tx *gorm.DB) error {
				// Latest message per counterpart, minus threads the
				// caller soft-deleted after that message.
				return tx.
					Raw(`
					SELECT m.* FROM messages m
					JOIN (
						SELECT
							CASE WHEN sender_id = @uid THEN recipient_id ELSE sender_id END AS participant_id,
							MAX(created_at) AS last_at
						FROM messages
						WHERE sender_id = @uid OR recipient_id = @uid
						GROUP BY 1
					) t ON t.last_at = m.created_at
						AND (CASE WHEN m.sender_id = @uid THEN m.recipient_id ELSE m.sender_id END) = t.participant_id
					WHERE NOT EXISTS (
						SELECT 1 FROM deleted_conversations d
						WHERE d.user_id = @uid
							AND d.participant_id = t.participant_id
							AND d.deleted_at >= t.last_at
					)
					ORDER BY m.created_at DESC
					`, map[string]any{"uid": userId}).
					Scan(&messages).
					Error
			})
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": messages, "count": len(messages)})
		}).
		GET("/conversations/:participant_id/messages", func(ctx *gin.Context) {
			participantId, err := parseParticipantParam(ctx)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var deleted models.DeletedConversation
			since := time.Time{}
			if err := db.
				Where(&models.DeletedConversation{UserID: userId, ParticipantID: participantId}).
				First(&deleted).
				Error; err == nil {
				since = deleted.DeletedAt
			}
			var messages []models.Message
			if err := db.
				Model(&models.Message{}).
				Where("((sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)) AND created_at > ?",
					userId, participantId, participantId, userId, since).
				Order("created_at ASC").
				Limit(200).
				Find(&messages).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": messages, "count": len(messages)})
		}).
		POST("/conversations/:participant_id/messages", func(ctx *gin.Context) {
			participantId, err := parseParticipantParam(ctx)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.SendMessageRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			message := models.Message{
				SenderID:    userId,
				RecipientID: participantId,
				Body:        body.Body,
			}
			db := db.GetDb()
			err = db.Transaction(func(tx *gorm.DB) error {
				var recipient models.User
				if err := tx.
					Where(&models.User{ID: participantId}).
					Select("id").
					First(&recipient).
					Error; err != nil {
					return err
				}
				return tx.Create(&message).Error
			})
			if err != nil {
				log.Printf("Error sending message to user %d: %s\n", participantId, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			go emitDirectMessage(participantId, &message)
			ctx.JSON(http.StatusCreated, gin.H{"data": message})
		}).
		DELETE("/conversations/:participant_id", func(ctx *gin.Context) {
			participantId, err := parseParticipantParam(ctx)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			marker := models.DeletedConversation{
				UserID:        userId,
				ParticipantID: participantId,
				DeletedAt:     time.Now(),
			}
			db := db.GetDb()
			if err := db.Transaction(func(tx *gorm.DB) error {
				return tx.
					Clauses(clause.OnConflict{
						Columns:   []clause.Column{{Name: "user_id"}, {Name: "participant_id"}},
						DoUpdates: clause.AssignmentColumns([]string{"deleted_at"}),
					}).
					Create(&marker).
					Error
			}); err != nil {
				log.Printf("Error deleting conversation with %d: %s\n", participantId, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
