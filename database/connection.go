package database

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/caiotravain/consultorio/internal/config"
	"github.com/caiotravain/consultorio/internal/models"
)

var DB *gorm.DB

// Connect opens the PostgreSQL connection. On Cloud Run the connection
// goes through the Cloud SQL Unix socket, locally over TCP.
func Connect(cfg config.DatabaseConfig) error {
	var dsn string
	if cfg.InstanceConnectionName != "" {
		dsn = fmt.Sprintf("host=/cloudsql/%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.InstanceConnectionName, cfg.User, cfg.Password, cfg.Name)
		log.Printf("Connecting to Cloud SQL via socket: %s", cfg.InstanceConnectionName)
	} else {
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port)
		log.Println("Connecting to local PostgreSQL")
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("✅ Database connected successfully!")
	return nil
}

// Migrate creates or updates the schema and the conflict-guard index
func Migrate() error {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Admin{},
		&models.Secretary{},
		&models.Doctor{},
		&models.Patient{},
		&models.Appointment{},
		&models.Conversation{},
		&models.Income{},
		&models.Expense{},
		&models.MedicalRecord{},
		&models.Prescription{},
		&models.PrescriptionItem{},
		&models.WaitingListEntry{},
	)
	if err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	// One non-cancelled appointment per (doctor, date, start_time).
	// Cancelled rows stay out of the index so their slot can be rebooked.
	err = DB.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_slot
		ON appointments (doctor_id, date, start_time)
		WHERE status <> 'cancelled'`).Error
	if err != nil {
		return fmt.Errorf("slot index creation failed: %w", err)
	}

	log.Println("✅ Database migrated successfully!")
	return nil
}
