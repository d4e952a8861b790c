package common

import (
	"os"
	"strconv"
	"time"

	"github.com/certvault/cert-extractor/constants"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Pipeline  PipelineConfig
	OCR       OCRConfig
	LLM       LLMConfig
	Artifacts ArtifactConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// PipelineConfig holds per-request pipeline knobs.
type PipelineConfig struct {
	SchemaVariant constants.SchemaVariant
	PDFRasterDPI  int
	MaxPages      int // 0 = all pages
}

// OCRConfig holds OCR engine configuration.
type OCRConfig struct {
	Engine         string // "tesseract" | "easyocr"
	Language       string // tesseract "eng", easyocr "en"
	TessdataDir    string
	PSM            int // tesseract page segmentation mode; 3 = automatic
	EasyOCRBinary  string
	Pdftoppm       string
	SerializeCalls bool
}

// LLMConfig holds text-interpretation backend configuration.
type LLMConfig struct {
	Provider    string // "openai" | "gemini"
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration

	// Gemini (Vertex AI) settings.
	ProjectID string
	Region    string
}

// ArtifactConfig holds side-artifact output configuration.
type ArtifactConfig struct {
	Dir     string
	Enabled bool
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            getEnv("HTTP_ADDR", ":8080"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Pipeline: PipelineConfig{
			SchemaVariant: constants.ParseSchemaVariant(getEnv("SCHEMA_VARIANT", "certificate")),
			PDFRasterDPI:  getEnvAsInt("PDF_RASTER_DPI", constants.DefaultPDFRasterDPI),
			MaxPages:      getEnvAsInt("PDF_MAX_PAGES", 0),
		},
		OCR: OCRConfig{
			Engine:         getEnv("OCR_ENGINE", "tesseract"),
			Language:       getEnv("OCR_LANGUAGE", "eng"),
			TessdataDir:    getEnv("TESSDATA_PREFIX", ""),
			PSM:            getEnvAsInt("TESSERACT_PSM", 3),
			EasyOCRBinary:  getEnv("EASYOCR_BINARY", "easyocr"),
			Pdftoppm:       getEnv("PDFTOPPM_BINARY", "pdftoppm"),
			SerializeCalls: getEnvAsBool("OCR_SERIALIZE_CALLS", false),
		},
		LLM: LLMConfig{
			Provider:    getEnv("LLM_PROVIDER", "openai"),
			Model:       getEnv("LLM_MODEL", ""),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", ""),
			Temperature: getEnvAsFloat32("LLM_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("LLM_TIMEOUT", 45*time.Second),
			ProjectID:   getEnv("VERTEX_PROJECT_ID", ""),
			Region:      getEnv("VERTEX_REGION", "us-central1"),
		},
		Artifacts: ArtifactConfig{
			Dir:     getEnv("ARTIFACT_DIR", "."),
			Enabled: getEnvAsBool("ARTIFACT_ENABLED", true),
		},
	}
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return NewPipelineError("CONFIG_ERROR", "HTTP_ADDR is required", nil)
	}
	switch c.LLM.Provider {
	case "openai":
		if c.LLM.APIKey == "" {
			return NewPipelineError("CONFIG_ERROR", "OPENAI_API_KEY is required for the openai provider", nil)
		}
	case "gemini":
		if c.LLM.ProjectID == "" {
			return NewPipelineError("CONFIG_ERROR", "VERTEX_PROJECT_ID is required for the gemini provider", nil)
		}
	default:
		return NewPipelineError("CONFIG_ERROR", "LLM_PROVIDER must be openai or gemini", nil)
	}
	switch c.OCR.Engine {
	case "tesseract", "easyocr":
	default:
		return NewPipelineError("CONFIG_ERROR", "OCR_ENGINE must be tesseract or easyocr", nil)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
