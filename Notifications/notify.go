package Notifications

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"FireGuard/Models"
	"FireGuard/email"
)

// Dispatcher stores notifications and fans them out to the user's registered
// push tokens and e-mail address. It implements Workflow.Notifier.
type Dispatcher struct {
	DB *gorm.DB
}

func NewDispatcher(db *gorm.DB) *Dispatcher {
	return &Dispatcher{DB: db}
}

// Notify records the notification row and attempts push + e-mail delivery.
// Delivery failures are logged, never propagated: the row is the source of
// truth, push and mail are best-effort.
func (d *Dispatcher) Notify(userID uint, title, body, entity string, entityID uint) {
	notification := Models.Notification{
		UserID:   userID,
		Title:    title,
		Body:     body,
		Entity:   entity,
		EntityID: entityID,
	}
	if err := d.DB.Create(&notification).Error; err != nil {
		log.Printf("Failed to store notification for user %d: %v", userID, err)
		return
	}

	data := map[string]string{
		"entity":    entity,
		"entity_id": fmt.Sprintf("%d", entityID),
	}
	var tokens []Models.FCMToken
	d.DB.Where("user_id = ?", userID).Find(&tokens)
	for _, token := range tokens {
		if err := sendPush(token.Value, title, body, data); err != nil {
			log.Printf("Failed to push notification to user %d: %v", userID, err)
		}
	}

	var user Models.User
	if err := d.DB.First(&user, userID).Error; err != nil {
		return
	}
	go func() {
		if err := email.SendWorkflowMail(user.Email, title, body); err != nil {
			log.Printf("Failed to email notification to %s: %v", user.Email, err)
		}
	}()
}
