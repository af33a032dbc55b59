package boot

import (
	"inkbook/src/common"
	"inkbook/src/db"
	"inkbook/src/lib"
	"inkbook/src/models"
	"inkbook/src/utils"
	"log"
	"os"
	"time"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.ArtistService{},
		&models.Availability{},
		&models.Booking{},
		&models.BookingCooldown{},
		&models.IntakeForm{},
		&models.Transaction{},
		&models.Message{},
		&models.DeletedConversation{},
		&models.WaitlistEntry{},
		&models.JobTask{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

func InitBroker() {
	go RecoverQueuedJobs()
	go ExpireOverdueJobs()
	emailQueue := os.Getenv("EMAIL_QUEUE")
	if emailQueue == "" {
		emailQueue = "OutboundEmails"
	}
	go lib.KafkaCreateTopics(emailQueue, common.BookingLifecycleTopic)
	go common.KafkaConsumers()
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	jobsWaitingInQueue := len(sched.Jobs())
	log.Println("Jobs in queue:", jobsWaitingInQueue)
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
		return
	}
}

// RecoverQueuedJobs re-arms hold-expiry jobs that were pending when the
// process last stopped. Jobs already past their run time are handled by
// ExpireOverdueJobs.
func RecoverQueuedJobs() error {
	sched, err := lib.GetScheduler()
	if err != nil {
		return err
	}
	db := db.GetDb()
	ss := db.Session(&gorm.Session{PrepareStmt: true})
	var jobTasks []models.JobTask
	err = ss.
		Model(&models.JobTask{}).Select("id", "payload", "runs_at").
		Where(&models.JobTask{Status: "pending", JobType: "OneTimeJobStartDateTime"}).
		Where("runs_at >= ?", time.Now()).
		Order("runs_at asc").
		Limit(100).
		Find(&jobTasks).
		Error
	if err != nil {
		log.Printf("Error retrieving jobs: %s\n", err.Error())
		return err
	}
	log.Printf("Found %d pending jobs", len(jobTasks))
	for _, jobTask := range jobTasks {
		bookingId, ok := jobTask.Payload["id"].(float64)
		if !ok {
			log.Printf("Job [%s] has no booking reference. Skipping\n", jobTask.ID.String())
			continue
		}
		job, err := sched.NewJob(
			gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(jobTask.RunsAt)),
			gocron.NewTask(utils.ExpireBookingHold, uint(bookingId)),
		)
		if err != nil {
			log.Printf("Failed to schedule job [%s]. Skipping: %s\n", jobTask.ID.String(), err.Error())
			continue
		}
		log.Printf("Added job to scheduler: name=%s id=%s job=%s\n", jobTask.Name, jobTask.ID.String(), job.ID().String())
	}

	return nil
}

// ExpireOverdueJobs settles hold-expiry jobs whose run time passed while
// the process was down: the booking hold is released immediately.
func ExpireOverdueJobs() {
	db := db.GetDb()
	var jobTasks []models.JobTask
	if err := db.
		Model(&models.JobTask{}).Select("id", "payload").
		Where(&models.JobTask{Status: "pending", JobType: "OneTimeJobStartDateTime"}).
		Where("runs_at < ?", time.Now()).
		Find(&jobTasks).
		Error; err != nil {
		log.Printf("Error while processing expired jobs: %s\n", err.Error())
		return
	}
	for _, jobTask := range jobTasks {
		if bookingId, ok := jobTask.Payload["id"].(float64); ok {
			utils.ExpireBookingHold(uint(bookingId))
		}
	}
	if err := db.
		Transaction(func(tx *gorm.DB) error {
			return tx.Model(&models.JobTask{}).
				Where("status", "pending").
				Where("runs_at < ?", time.Now()).
				Update("status", "expired").Error
		}); err != nil {
		log.Printf("Error while processing expired jobs: %s\n", err.Error())
	}
}
