package app

import (
	"strings"

	"github.com/veridoc/ontology-backend/internal/ontology"
	"github.com/veridoc/ontology-backend/internal/platform/envutil"
)

type Config struct {
	Addr         string
	LogMode      string
	Environment  string
	Version      string
	SeedFile     string
	LayerPolicy  ontology.LayerPolicy
	AllowOrigins []string
}

func LoadConfig() Config {
	cfg := Config{
		Addr:        envutil.String("HTTP_ADDR", ":8080"),
		LogMode:     envutil.String("LOG_MODE", "development"),
		Environment: envutil.String("ENVIRONMENT", "development"),
		Version:     envutil.String("SERVICE_VERSION", "dev"),
		SeedFile:    envutil.String("SEED_FILE", ""),
		LayerPolicy: ontology.ParseLayerPolicy(envutil.String("LAYER_POLICY", "strict")),
	}
	if raw := envutil.String("CORS_ALLOW_ORIGINS", ""); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
			}
		}
	}
	return cfg
}
