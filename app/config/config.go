package config

import (
	"database/sql"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

type Config struct {
	DB *sql.DB
}

var AppConfig *Config

// Load reads .env (if present) so local runs do not need exported variables.
func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
}

// InitDB opens the PostgreSQL connection pool.
func InitDB() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost port=5432 user=postgres dbname=zawadi sslmode=disable"
		log.Println("DATABASE_URL not set, using local PostgreSQL database")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal("Failed to open database connection:", err)
	}

	// Connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	log.Println("Testing database connection...")
	if err = db.Ping(); err != nil {
		log.Fatal("Cannot establish database connection: ", err)
	}

	AppConfig = &Config{DB: db}
	log.Println("Database connected successfully")
}

func GetDB() *sql.DB {
	return AppConfig.DB
}

// JWTSecret returns the signing key for session tokens.
func JWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "zawadi-college-secret-key" // Default for development
	}
	return []byte(secret)
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Invalid %s=%q, using default %s", key, v, fallback)
		return fallback
	}
	return d
}

// ExamCloseGrace is how long an approved exam stays editable before the
// background sweep locks it.
func ExamCloseGrace() time.Duration {
	return durationEnv("EXAM_CLOSE_GRACE", 72*time.Hour)
}

// CloseSweepInterval is the period of the expired-exam sweep.
func CloseSweepInterval() time.Duration {
	return durationEnv("EXAM_CLOSE_SWEEP_INTERVAL", 5*time.Minute)
}

// DispatchInterval is the period of the notification dispatch sweep.
func DispatchInterval() time.Duration {
	return durationEnv("NOTIFICATION_DISPATCH_INTERVAL", 60*time.Second)
}
