package model

// Settings is the flat map of boolean feature toggles exposed on the
// settings endpoint. Only RequestLogging affects the core; the rest are
// consumed by middleware.
type Settings struct {
	RateLimit       bool `json:"rate_limit"`
	SecurityHeaders bool `json:"security_headers"`
	InputValidation bool `json:"input_validation"`
	UploadSecurity  bool `json:"upload_security"`
	RequestLogging  bool `json:"request_logging"`
	CSP             bool `json:"csp"`
}

func DefaultSettings() Settings {
	return Settings{
		RateLimit:       true,
		SecurityHeaders: true,
		InputValidation: true,
		UploadSecurity:  true,
		RequestLogging:  true,
		CSP:             true,
	}
}
