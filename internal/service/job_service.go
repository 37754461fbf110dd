package service

import (
	"fmt"
	"log"

	"tavolo/internal/repository"
)

type JobService struct {
	Repo     *repository.AppointmentRepository
	Notifier *NotifyService
}

func NewJobService(repo *repository.AppointmentRepository, notifier *NotifyService) *JobService {
	return &JobService{Repo: repo, Notifier: notifier}
}

// SendUpcomingReminders emails every confirmed appointment starting within
// the next 24 hours that has not been reminded yet.
func (s *JobService) SendUpcomingReminders() error {
	appts, err := s.Repo.GetDueReminders()
	if err != nil {
		return fmt.Errorf("cron job: failed to load due reminders: %w", err)
	}
	if len(appts) == 0 {
		return nil
	}

	log.Printf("Cron Job: sending %d appointment reminders", len(appts))
	for _, appt := range appts {
		if err := s.Notifier.SendReminder(appt); err != nil {
			log.Printf("Cron Job: reminder for appointment %d failed: %v", appt.ID, err)
			continue
		}
		if err := s.Repo.MarkReminderSent(appt.ID); err != nil {
			log.Printf("Cron Job: could not mark reminder sent for appointment %d: %v", appt.ID, err)
		}
	}
	return nil
}
