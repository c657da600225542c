package config

import (
	"encoding/json"
	"os"

	"github.com/mbortnikov/marketauth/internal/flagx"
	"github.com/mbortnikov/marketauth/internal/timex"
)

// JsonConfig is the intermediate DTO for JSON configuration files. Duration
// fields use timex.Duration, which accepts both strings such as "30m" and
// integer nanoseconds. After unmarshalling, values are copied into Config.
type JsonConfig struct {
	EndpointAddr           string         `json:"endpoint_addr"`
	DatabaseDSN            string         `json:"database_dsn"`
	SecretKey              string         `json:"secret_key"`
	TokenTTL               timex.Duration `json:"token_ttl"`
	VerificationCodeWindow timex.Duration `json:"verification_code_window"`
	AuthRatePerMinute      int            `json:"auth_rate_per_minute"`
	AuthRateBurst          int            `json:"auth_rate_burst"`
	SMSProvider            string         `json:"sms_provider"`
	SNSRegion              string         `json:"sns_region"`
	SNSAccessKeyID         string         `json:"sns_access_key_id"`
	SNSSecretAccessKey     string         `json:"sns_secret_access_key"`
	TwilioAccountSID       string         `json:"twilio_account_sid"`
	TwilioAuthToken        string         `json:"twilio_auth_token"`
	TwilioFromNumber       string         `json:"twilio_from_number"`
}

// parseJson loads configuration values from the JSON file given via the
// -c/-config flags into the provided Config. Absent file path means nothing
// is loaded; an unreadable or malformed file panics, since the process
// cannot start half-configured.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.TokenTTL.Duration != 0 {
		config.TokenTTL = c.TokenTTL.Duration
	}
	if c.VerificationCodeWindow.Duration != 0 {
		config.VerificationCodeWindow = c.VerificationCodeWindow.Duration
	}
	if c.AuthRatePerMinute != 0 {
		config.AuthRatePerMinute = c.AuthRatePerMinute
	}
	if c.AuthRateBurst != 0 {
		config.AuthRateBurst = c.AuthRateBurst
	}
	if c.SMSProvider != "" {
		config.SMSProvider = c.SMSProvider
	}
	if c.SNSRegion != "" {
		config.SNSRegion = c.SNSRegion
	}
	if c.SNSAccessKeyID != "" {
		config.SNSAccessKeyID = c.SNSAccessKeyID
	}
	if c.SNSSecretAccessKey != "" {
		config.SNSSecretAccessKey = c.SNSSecretAccessKey
	}
	if c.TwilioAccountSID != "" {
		config.TwilioAccountSID = c.TwilioAccountSID
	}
	if c.TwilioAuthToken != "" {
		config.TwilioAuthToken = c.TwilioAuthToken
	}
	if c.TwilioFromNumber != "" {
		config.TwilioFromNumber = c.TwilioFromNumber
	}
}
