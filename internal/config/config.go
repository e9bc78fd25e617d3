package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"perrada/internal/models"
)

const defaultTransferAccounts = "Bancolombia Ahorros=569-1234567-89,Nequi=316-123-4567"

var AppEnv Config

type Config struct {
	Port            string
	MongoURI        string
	DBName          string
	JWTSecret       string
	SessionTokenTTL time.Duration
	// AdminPasscodeHash is a bcrypt hash. Empty means admin sign-in is
	// anonymous with no passcode.
	AdminPasscodeHash string
	CORSOrigins       []string
	Location          *time.Location
	// OrderStatusWrites turns the background persistence of status
	// changes on or off. When off, changes only live on the board.
	OrderStatusWrites bool

	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadPreset string
	CloudinaryFolder       string
	UploadDir              string

	GeminiAPIKey string
	ImageModel   string

	// TransferAccounts are listed to customers who choose to pay by
	// transfer.
	TransferAccounts []models.PaymentAccount
}

func Load() error {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}

	cfg, err := fromEnv()
	if err != nil {
		return err
	}
	AppEnv = cfg
	return nil
}

func fromEnv() (Config, error) {
	tz := getEnvOrDefault("TIMEZONE", "America/Bogota")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Config{}, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}

	return Config{
		Port:                   getEnvOrDefault("PORT", "8080"),
		MongoURI:               getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017/?replicaSet=rs0"),
		DBName:                 getEnvOrDefault("DB_NAME", "perrada"),
		JWTSecret:              getEnvOrDefault("JWT_SECRET", ""),
		SessionTokenTTL:        getDurationEnv("SESSION_TOKEN_TTL", 12, time.Hour),
		AdminPasscodeHash:      getEnvOrDefault("ADMIN_PASSCODE_HASH", ""),
		CORSOrigins:            getListEnv("CORS_ORIGINS", []string{"http://localhost:9002"}),
		Location:               loc,
		OrderStatusWrites:      getBoolEnv("ORDER_STATUS_WRITES", true),
		CloudinaryCloudName:    getEnvOrDefault("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:       getEnvOrDefault("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret:    getEnvOrDefault("CLOUDINARY_API_SECRET", ""),
		CloudinaryUploadPreset: getEnvOrDefault("CLOUDINARY_UPLOAD_PRESET", ""),
		CloudinaryFolder:       getEnvOrDefault("CLOUDINARY_FOLDER", "products"),
		UploadDir:              getEnvOrDefault("UPLOAD_DIR", "./public"),
		GeminiAPIKey:           getEnvOrDefault("GEMINI_API_KEY", ""),
		ImageModel:             getEnvOrDefault("IMAGE_MODEL", "imagen-4.0-fast-generate-001"),
		TransferAccounts:       getAccountsEnv("TRANSFER_ACCOUNTS", defaultTransferAccounts),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	out := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// getAccountsEnv reads a comma separated list of bank=number pairs.
// Entries without both parts are skipped.
func getAccountsEnv(key, defaultValue string) []models.PaymentAccount {
	var accounts []models.PaymentAccount
	for _, entry := range strings.Split(getEnvOrDefault(key, defaultValue), ",") {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		bank, number, ok := strings.Cut(entry, "=")
		bank, number = strings.TrimSpace(bank), strings.TrimSpace(number)
		if !ok || bank == "" || number == "" {
			log.Printf("skipping %s entry %q: want bank=number", key, entry)
			continue
		}
		accounts = append(accounts, models.PaymentAccount{Bank: bank, Number: number})
	}
	return accounts
}
