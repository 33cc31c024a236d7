package CronJobs

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"FireGuard/Models"
	"FireGuard/Workflow"
)

// BillingReminder is the scheduled service that reminds project owners about
// finished milestones whose progress billing is still unpaid.
type BillingReminder struct {
	cronScheduler  *cron.Cron
	db             *gorm.DB
	notifier       Workflow.Notifier
	runImmediately bool
	jobID          cron.EntryID
}

// NewBillingReminder creates a new reminder with the given configuration
func NewBillingReminder(db *gorm.DB, notifier Workflow.Notifier, runImmediately bool) *BillingReminder {
	return &BillingReminder{
		cronScheduler:  cron.New(cron.WithSeconds()),
		db:             db,
		notifier:       notifier,
		runImmediately: runImmediately,
	}
}

// Start initiates the daily reminder cron job
func (b *BillingReminder) Start() error {
	var err error
	b.jobID, err = b.cronScheduler.AddFunc("0 0 8 * * *", func() {
		log.Println("Running scheduled billing reminder check")
		b.runReminderCheck()
	})
	if err != nil {
		return fmt.Errorf("error scheduling cron job: %w", err)
	}

	b.cronScheduler.Start()
	log.Println("Billing reminder scheduler started - will run daily at 8:00 AM")

	if b.runImmediately {
		log.Println("Running initial billing reminder check")
		b.runReminderCheck()
	}
	return nil
}

// Stop terminates the reminder scheduler
func (b *BillingReminder) Stop() {
	b.cronScheduler.Stop()
}

func (b *BillingReminder) runReminderCheck() {
	var projects []Models.Project
	if err := b.db.Where("project_status = ?", Models.ProjectOngoing).Find(&projects).Error; err != nil {
		log.Printf("Billing reminder: failed to load projects: %v", err)
		return
	}

	reminded := 0
	for _, project := range projects {
		var due []Models.ProjectMilestone
		err := b.db.Where("project_id = ? AND milestone_status = ? AND billing_status = ?",
			project.ID, Models.MilestoneDone, Models.BillingUnpaid).Find(&due).Error
		if err != nil {
			log.Printf("Billing reminder: failed to load milestones for project %d: %v", project.ID, err)
			continue
		}
		for _, milestone := range due {
			b.notifier.Notify(project.UserID,
				fmt.Sprintf("Progress Billing %d Reminder", milestone.MilestoneNo),
				fmt.Sprintf("Milestone %d (%s) has been completed and its billing of %s is still unpaid.",
					milestone.MilestoneNo, milestone.Description, milestone.Price.StringFixed(2)),
				"project", project.ID)
			reminded++
		}
	}
	log.Printf("Billing reminder check finished, %d reminders sent", reminded)
}
