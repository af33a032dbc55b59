package main

import (
	"errors"
	"inkbook/src/types"
	"inkbook/src/utils"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func billingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/billing/checkout", func(ctx *gin.Context) {
			var body types.CheckoutRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			url, mode, err := utils.CreateDepositCheckout(body.BookingID, userId, body.Label)
			if err != nil {
				log.Printf("error on checkout: %s\n", err.Error())
				status := http.StatusBadRequest
				if errors.Is(err, utils.ErrIntakeRequired) {
					status = http.StatusPreconditionFailed
				}
				ctx.JSON(status, gin.H{"error": err.Error()})
				return
			}
			if mode == "free" {
				ctx.JSON(http.StatusOK, gin.H{"mode": "free"})
				return
			}
			log.Printf("URL: %s\n", *url)
			ctx.JSON(http.StatusOK, gin.H{"url": *url})
		}).
		POST("/billing/refund", func(ctx *gin.Context) {
			var body types.RefundRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			if err := utils.RefundByBooking(body.BookingID, userId, body.Reason); err != nil {
				log.Printf("error on refund: %s\n", err.Error())
				status := http.StatusBadRequest
				if errors.Is(err, utils.ErrNotRefundable) {
					status = http.StatusForbidden
				}
				ctx.JSON(status, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
