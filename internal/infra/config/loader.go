package config

import (
	"strconv"
	"strings"

	"github.com/YoshitsuguKoike/repostflow/internal/domain/social"
)

// Environment variables recognized by LoadSettings
const (
	EnvProfiles       = "X_PROFILES"
	EnvXBearerToken   = "X_BEARER_TOKEN"
	EnvLinkedInToken  = "LINKEDIN_ACCESS_TOKEN"
	EnvLinkedInPerson = "LINKEDIN_PERSON_ID"
	EnvAnthropicKey   = "ANTHROPIC_API_KEY"
	EnvSerperKey      = "SERPER_API_KEY"
	EnvHome           = "REPOSTFLOW_HOME"
	EnvAgent          = "REPOSTFLOW_AGENT"
	EnvModel          = "REPOSTFLOW_MODEL"
	EnvMaxAttempts    = "REPOSTFLOW_MAX_ATTEMPTS"
	EnvReviewMode     = "REPOSTFLOW_REVIEW_MODE"
	EnvReviewTimeout  = "REPOSTFLOW_REVIEW_TIMEOUT"
	EnvDefaultVerdict = "REPOSTFLOW_DEFAULT_VERDICT"
	EnvHistoryDriver  = "REPOSTFLOW_HISTORY_DRIVER"
	EnvRedisAddr      = "REPOSTFLOW_REDIS_ADDR"
	EnvStorage        = "REPOSTFLOW_STORAGE"
	EnvS3Bucket       = "REPOSTFLOW_S3_BUCKET"
	EnvLogLevel       = "REPOSTFLOW_LOG_LEVEL"
)

// applyEnv overlays environment variables onto the file settings.
// It reports whether any variable was applied.
func applyEnv(s *RawSettings, getenv func(string) string) bool {
	applied := false
	str := func(key string, dst **string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = &v
			applied = true
		}
	}
	num := func(key string, dst **int) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = &n
				applied = true
			}
		}
	}

	if v := getenv(EnvProfiles); strings.TrimSpace(v) != "" {
		s.Profiles = social.SplitProfileList(v)
		applied = true
	}

	str(EnvXBearerToken, &s.X.BearerToken)
	str(EnvLinkedInToken, &s.LinkedIn.AccessToken)
	str(EnvLinkedInPerson, &s.LinkedIn.PersonID)
	str(EnvAnthropicKey, &s.Agent.APIKey)
	str(EnvSerperKey, &s.Research.SerperAPIKey)
	str(EnvHome, &s.DataDir)
	str(EnvAgent, &s.Agent.Type)
	str(EnvModel, &s.Agent.Model)
	num(EnvMaxAttempts, &s.MaxAttempts)
	str(EnvReviewMode, &s.Review.Mode)
	str(EnvReviewTimeout, &s.Review.Timeout)
	str(EnvDefaultVerdict, &s.Review.DefaultVerdict)
	str(EnvHistoryDriver, &s.History.Driver)
	str(EnvRedisAddr, &s.History.RedisAddr)
	str(EnvStorage, &s.Storage.Type)
	str(EnvS3Bucket, &s.Storage.S3Bucket)
	str(EnvLogLevel, &s.LogLevel)

	return applied
}
