package main

import (
	"log"

	"FireGuard/CronJobs"
	"FireGuard/FiberConfig"
	"FireGuard/Models"
	"FireGuard/Notifications"
	"FireGuard/Slack"
	"FireGuard/Workflow"
)

func main() {
	Models.Connect()

	if err := Notifications.InitFirebase(); err != nil {
		log.Println("Failed to initialize Firebase:", err)
	}

	notifier := Notifications.NewDispatcher(Models.DB)
	service := Workflow.NewService(Models.DB, notifier)
	slack := Slack.NewClientFromEnv()

	reminder := CronJobs.NewBillingReminder(Models.DB, notifier, false)
	if err := reminder.Start(); err != nil {
		log.Println("Failed to start billing reminder:", err)
	}

	FiberConfig.FiberConfig(Models.DB, service, slack)
}
