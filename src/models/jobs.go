package models

import (
	"inkbook/src/db"
	"inkbook/src/lib"
	"inkbook/src/types"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JobTask struct {
	ID uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`

	Name      string      `json:"-"`
	JobType   string      `json:"-"`
	RunsAt    time.Time   `json:"-"`
	PayloadID string      `json:"-"`
	Payload   types.JSONB `gorm:"type:jsonb" json:"-"`
	Source    string      `json:"-"`
	Status    string      `gorm:"default:'pending'" json:"-"`
	Topic     string      `json:"-"`
}

// CreateAndEnqueueJobTask persists the task row and schedules a
// one-time job for it. The handler runs once at RunsAt.
func (jobTask *JobTask) CreateAndEnqueueJobTask(handler any, args ...any) (string, error) {
	var jobID string
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		id, err := lib.CreateOneTimeCronJob(
			gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(jobTask.RunsAt)),
			gocron.NewTask(handler, args...),
		)
		if err != nil {
			log.Printf("Error scheduling job %s: %s\n", jobTask.Name, err.Error())
			return err
		}
		jobID = *id
		sid, err := uuid.Parse(jobID)
		if err == nil {
			jobTask.ID = sid
		}
		if jobTask.Payload == nil {
			jobTask.Payload = types.JSONB{}
		}
		jobTask.Payload["JobID"] = jobID
		if err := tx.Create(jobTask).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	log.Printf("Created schedule for job %s with name %s at %s\n", jobID, jobTask.Name, jobTask.RunsAt)
	return jobID, nil
}
