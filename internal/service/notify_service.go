package service

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"os"
	"time"

	"tavolo/internal/db"
	"tavolo/internal/entities"
)

const (
	eventCreated   = "created"
	eventCancelled = "cancelled"
)

type bookingEvent struct {
	kind        string
	appointment db.Appointment
}

var emailTmpl = template.Must(template.New("booking").Parse(`
<p>Hello {{.CustomerName}},</p>
<p>Your consultation is {{.Status}} for <strong>{{.DateFormatted}}</strong> at <strong>{{.TimeFormatted}}</strong>.</p>
{{if .ServiceType}}<p>Topic: {{.ServiceType}}</p>{{end}}
<p>Tavolo &mdash; {{.CurrentYear}}</p>
`))

type emailTmplData struct {
	entities.BookingEmailData
	Status string
}

// NotifyService consumes BookingCreated/BookingCancelled events and delivers
// customer and operator emails plus an optional SMS. Delivery failures are
// logged and never propagate to the booking caller.
type NotifyService struct {
	loc           *time.Location
	operatorEmail string
	events        chan bookingEvent
	done          chan struct{}
}

func NewNotifyService(loc *time.Location) *NotifyService {
	s := &NotifyService{
		loc:           loc,
		operatorEmail: os.Getenv("OPERATOR_EMAIL"),
		events:        make(chan bookingEvent, 64),
		done:          make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *NotifyService) BookingCreated(appt db.Appointment) {
	s.publish(bookingEvent{kind: eventCreated, appointment: appt})
}

func (s *NotifyService) BookingCancelled(appt db.Appointment) {
	s.publish(bookingEvent{kind: eventCancelled, appointment: appt})
}

// publish never blocks the caller; if the dispatcher is saturated the event
// is dropped and logged.
func (s *NotifyService) publish(evt bookingEvent) {
	select {
	case s.events <- evt:
	default:
		log.Printf("WARNING: notification queue full, dropping %s event for appointment %d", evt.kind, evt.appointment.ID)
	}
}

// Close drains pending events and stops the dispatcher.
func (s *NotifyService) Close() {
	close(s.events)
	<-s.done
}

func (s *NotifyService) run() {
	for evt := range s.events {
		s.dispatch(evt)
	}
	close(s.done)
}

func (s *NotifyService) dispatch(evt bookingEvent) {
	appt := evt.appointment
	data := s.emailData(appt)

	var status string
	switch evt.kind {
	case eventCreated:
		status = "confirmed"
	case eventCancelled:
		status = "cancelled"
	default:
		log.Printf("WARNING: unknown booking event kind %q", evt.kind)
		return
	}

	subject := fmt.Sprintf("Your consultation is %s - %s at %s", status, data.DateFormatted, data.TimeFormatted)
	plainBody := fmt.Sprintf(
		"Hello %s,\n\nYour consultation is %s for %s at %s.\n\n"+
			"Thank you for choosing Tavolo.\n",
		data.CustomerName, status, data.DateFormatted, data.TimeFormatted,
	)

	if err := SendEmailWithSendGrid(appt.CustomerEmail, appt.CustomerName, subject, plainBody, s.renderHTML(data, status)); err != nil {
		log.Printf("ALERT: appointment %d was %s, but the customer email failed: %v", appt.ID, status, err)
	}

	if s.operatorEmail != "" {
		opSubject := fmt.Sprintf("Booking %s: %s on %s at %s", status, appt.CustomerName, appt.AppointmentDate, data.TimeFormatted)
		opBody := fmt.Sprintf(
			"Appointment #%d %s.\n\nCustomer: %s\nEmail: %s\nPhone: %s\nDate: %s\nTime: %s\nTopic: %s\nNotes: %s\n",
			appt.ID, status, appt.CustomerName, appt.CustomerEmail, appt.CustomerPhone,
			data.DateFormatted, data.TimeFormatted, appt.ServiceType, appt.Notes,
		)
		if err := SendEmailWithSendGrid(s.operatorEmail, "Tavolo", opSubject, opBody, ""); err != nil {
			log.Printf("ALERT: operator email for appointment %d failed: %v", appt.ID, err)
		}
	}

	if evt.kind == eventCreated && SMSConfigured() {
		sms := fmt.Sprintf("Tavolo: your consultation is confirmed for %s at %s. Details in your email.", appt.AppointmentDate, data.TimeFormatted)
		if err := SendSMS(appt.CustomerPhone, sms); err != nil {
			log.Printf("ALERT: appointment %d was created, but the confirmation SMS to %s failed: %v", appt.ID, appt.CustomerPhone, err)
		}
	}
}

// SendReminder delivers the 24-hour reminder email for one appointment.
func (s *NotifyService) SendReminder(appt db.Appointment) error {
	data := s.emailData(appt)
	subject := fmt.Sprintf("Reminder: your consultation is tomorrow at %s", data.TimeFormatted)
	plainBody := fmt.Sprintf(
		"Hello %s,\n\nThis is a reminder of your consultation on %s at %s.\n\n"+
			"See you soon,\nTavolo\n",
		data.CustomerName, data.DateFormatted, data.TimeFormatted,
	)
	return SendEmailWithSendGrid(appt.CustomerEmail, appt.CustomerName, subject, plainBody, s.renderHTML(data, "confirmed"))
}

func (s *NotifyService) emailData(appt db.Appointment) entities.BookingEmailData {
	dateFormatted := appt.AppointmentDate
	if day, err := time.ParseInLocation("2006-01-02", appt.AppointmentDate, s.loc); err == nil {
		dateFormatted = day.Format("Monday, 02 Jan 2006")
	}
	timeFormatted := appt.AppointmentTime
	if clock, err := time.Parse("15:04:05", appt.AppointmentTime); err == nil {
		timeFormatted = clock.Format("15:04")
	}

	return entities.BookingEmailData{
		CustomerName:  appt.CustomerName,
		CustomerEmail: appt.CustomerEmail,
		CustomerPhone: appt.CustomerPhone,
		DateFormatted: dateFormatted,
		TimeFormatted: timeFormatted,
		ServiceType:   appt.ServiceType,
		Notes:         appt.Notes,
		CurrentYear:   time.Now().In(s.loc).Year(),
	}
}

func (s *NotifyService) renderHTML(data entities.BookingEmailData, status string) string {
	var buf bytes.Buffer
	if err := emailTmpl.Execute(&buf, emailTmplData{BookingEmailData: data, Status: status}); err != nil {
		log.Printf("ALERT: error rendering booking email template: %v", err)
		return ""
	}
	return buf.String()
}
