// Package config stores the coach service configuration loaded from
// environment variables.
package config

import "creatorcoach/pkg/config"

// Config stores environment configuration for the coach service.
type Config struct {
	Port string

	VectorDir   string
	Collection  string
	PostsPath   string
	ProfilePath string
	TemplateDir string
	ForceReload bool

	VoiceOutputDir string

	DefaultTemperature float64
	DefaultMaxTokens   int
}

// LoadConfig loads the coach configuration from environment variables.
func LoadConfig() Config {
	return Config{
		Port:               config.GetEnv("PORT", "8000"),
		VectorDir:          config.GetEnv("VECTOR_DIR", "vector_db"),
		Collection:         config.GetEnv("COLLECTION_NAME", "instagram_posts"),
		PostsPath:          config.GetEnv("POSTS_PATH", "data/sample_posts.json"),
		ProfilePath:        config.GetEnv("PROFILE_PATH", "data/influencer_profile.json"),
		TemplateDir:        config.GetEnv("PROMPT_TEMPLATE_DIR", ""),
		ForceReload:        config.GetEnvBool("FORCE_RELOAD", false),
		VoiceOutputDir:     config.GetEnv("VOICE_OUTPUT_DIR", "output/voice_summaries"),
		DefaultTemperature: config.GetEnvFloat("TEMPERATURE", 0.5),
		DefaultMaxTokens:   config.GetEnvInt("MAX_TOKENS", 1000),
	}
}
