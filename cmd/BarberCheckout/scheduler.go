package main

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sebuszqo/BarberCheckout/internal/checkout/application"
	"github.com/sirupsen/logrus"
)

// StartSessionSweeper drops idle checkout sessions from memory on the given cron schedule.
func StartSessionSweeper(registry *application.SessionRegistry, schedule string, idle time.Duration, log logrus.FieldLogger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		removed := registry.Sweep(idle)
		log.WithFields(logrus.Fields{"removed": removed, "active": registry.Len()}).Debug("Session sweep finished")
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
