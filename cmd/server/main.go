package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"tavolo/internal/api"
	"tavolo/internal/auth"
	"tavolo/internal/cache"
	"tavolo/internal/repository"
	"tavolo/internal/service"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
)

func main() {
	godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	database, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := database.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	tzName := os.Getenv("BOOKING_TIMEZONE")
	if tzName == "" {
		tzName = "Europe/Rome"
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		log.Fatalf("Invalid BOOKING_TIMEZONE %q: %v", tzName, err)
	}

	resultCache := cache.New()
	availRepo := repository.NewAvailabilityRepository(database)
	apptRepo := repository.NewAppointmentRepository(database)
	adminAuthRepo := repository.NewAdminAuthRepository(database)

	notifier := service.NewNotifyService(loc)

	availSvc := service.NewAvailabilityService(availRepo, apptRepo, resultCache, loc)
	bookingSvc := service.NewBookingService(apptRepo, resultCache, notifier)
	adminSvc := service.NewAdminService(availRepo, apptRepo, resultCache, notifier)
	adminAuthSvc := service.NewAdminAuthService(adminAuthRepo)
	jobSvc := service.NewJobService(apptRepo, notifier)

	bookingHandler := api.NewBookingHandler(availSvc, bookingSvc)
	adminHandler := api.NewAdminHandler(adminSvc)
	adminAuthHandler := api.NewAdminAuthHandler(adminAuthSvc)

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/availability", bookingHandler.GetAvailability).Methods("GET")
	r.HandleFunc("/api/check-slot", bookingHandler.CheckSlot).Methods("GET")
	r.HandleFunc("/api/appointments", bookingHandler.CreateAppointment).Methods("POST")

	r.HandleFunc("/admin/login", adminAuthHandler.Login).Methods("POST")

	// Admin endpoints (protected)
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware)
	admin.HandleFunc("/appointments", adminHandler.ListAppointments).Methods("GET")
	admin.HandleFunc("/appointments/{id}", adminHandler.CancelAppointment).Methods("DELETE")
	admin.HandleFunc("/rules", adminHandler.ListRules).Methods("GET")
	admin.HandleFunc("/rules", adminHandler.CreateRule).Methods("POST")
	admin.HandleFunc("/rules/{id}", adminHandler.DeleteRule).Methods("DELETE")
	admin.HandleFunc("/blocked-dates", adminHandler.ListBlockedDates).Methods("GET")
	admin.HandleFunc("/blocked-dates", adminHandler.CreateBlockedDate).Methods("POST")
	admin.HandleFunc("/blocked-dates/{id}", adminHandler.DeleteBlockedDate).Methods("DELETE")

	c := cron.New()
	if _, err := c.AddFunc("@hourly", func() {
		if err := jobSvc.SendUpcomingReminders(); err != nil {
			log.Printf("Reminder job failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule reminder job: %v", err)
	}
	c.Start()

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on port %s (timezone %s)", port, loc)
	log.Fatal(http.ListenAndServe(":"+port, handlers.LoggingHandler(os.Stdout, cors(r))))
}
