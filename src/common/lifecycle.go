package common

import (
	"context"
	"encoding/json"
	"inkbook/src/lib"
	"inkbook/src/types"
	"log"

	"github.com/tidwall/gjson"
)

// PublishBookingEvent produces a booking lifecycle message
// (created/confirmed/cancelled/completed/expired) for downstream
// consumers.
func PublishBookingEvent(event string, bookingId uint, payload types.JSONB) {
	if payload == nil {
		payload = types.JSONB{}
	}
	payload["event"] = event
	payload["booking_id"] = bookingId
	if err := lib.KafkaProduceMessage("BookingLifecycleProducer", BookingLifecycleTopic, payload); err != nil {
		log.Printf("Error publishing %s for Booking [%d]: %s\n", event, bookingId, err.Error())
	}
}

// BookingLifecycleConsumer keeps the per-artist rolling counters in
// redis warm so dashboard reads stay cheap.
func BookingLifecycleConsumer() {
	log.Printf("%s: Listening for messages...\n", BookingLifecycleTopic)
	if err := lib.KafkaConsumeTopic("lifecycleworker", BookingLifecycleTopic, func(value []byte) {
		body := string(value)
		if !gjson.Valid(body) {
			log.Printf("[%s]: Received invalid json body. Aborting\n", BookingLifecycleTopic)
			return
		}
		event := gjson.Get(body, "event").String()
		artistId := gjson.Get(body, "artist_id").Uint()
		if event == "" || artistId == 0 {
			return
		}
		var payload types.JSONB
		if err := json.Unmarshal(value, &payload); err != nil {
			log.Printf("Error deserializing JSON: %s\n", err.Error())
			return
		}
		rd := lib.GetRedisClient()
		key := lib.ArtistLifecycleKey(uint(artistId), event)
		if err := rd.Incr(context.Background(), key).Err(); err != nil {
			log.Printf("[redis] Error updating counter %s: %s\n", key, err.Error())
		}
	}); err != nil {
		log.Printf("Error starting consumer for %s: %s\n", BookingLifecycleTopic, err.Error())
	}
}
