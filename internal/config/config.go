package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// Detector (web API) and classifier (desk client) model assets.
	DetectorModelPath      string
	DetectorLabelsPath     string
	ClassifierModelPath    string
	ClassifierMetadataPath string

	UploadsDir string
	StaticDir  string

	CameraDeviceID int

	JWTSecret     string
	JWTExpiration time.Duration
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	jwtExpMinutes, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_MINUTES", "30"))
	cameraID, _ := strconv.Atoi(getEnv("CAMERA_DEVICE_ID", "0"))

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8000"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "dentiai"),
		DBPassword: getEnv("DB_PASSWORD", "dentiai"),
		DBName:     getEnv("DB_NAME", "clinic"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		DetectorModelPath:      getEnv("DETECTOR_MODEL_PATH", "models/best.onnx"),
		DetectorLabelsPath:     getEnv("DETECTOR_LABELS_PATH", "models/detector_labels.txt"),
		ClassifierModelPath:    getEnv("CLASSIFIER_MODEL_PATH", "models/keras_model.onnx"),
		ClassifierMetadataPath: getEnv("CLASSIFIER_METADATA_PATH", "models/classifier_metadata.json"),

		UploadsDir: getEnv("UPLOADS_DIR", "uploads"),
		StaticDir:  getEnv("STATIC_DIR", "static"),

		CameraDeviceID: cameraID,

		JWTSecret:     getEnv("JWT_SECRET", "change-me-in-production"),
		JWTExpiration: time.Duration(jwtExpMinutes) * time.Minute,
	}
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
