package models

import (
	"time"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Body struct {
		Status  string    `json:"status" example:"healthy" doc:"Service health status"`
		Version string    `json:"version" example:"1.0.0" doc:"API version"`
		Time    time.Time `json:"time" doc:"Current server time"`
	}
}

// SessionStateBody describes where the caller's session is in the login flow
type SessionStateBody struct {
	State         string `json:"state" enum:"logged_out,logged_out_error,logged_in" doc:"Login state"`
	Authenticated bool   `json:"authenticated" doc:"Whether the calculator is unlocked"`
	LoginFailed   bool   `json:"login_failed" doc:"Whether the last password attempt was wrong"`
	Message       string `json:"message,omitempty" doc:"Human-readable status message"`
}

// GetSessionResponse represents the current session state
type GetSessionResponse struct {
	Body SessionStateBody
}

// LoginRequest represents a password submission
type LoginRequest struct {
	Body struct {
		Password string `json:"password" maxLength:"256" required:"true" doc:"Shared access password"`
	}
}

// LoginResponse represents the session state after a password submission
type LoginResponse struct {
	Body SessionStateBody
}

// LogoutResponse represents the session state after logging out
type LogoutResponse struct {
	Body SessionStateBody
}

// SourceRow is one noise source as returned by the API
type SourceRow struct {
	Index int      `json:"index" doc:"Zero-based row position"`
	Name  string   `json:"name" doc:"Equipment or source name"`
	Level *float64 `json:"level_db" nullable:"true" doc:"Sound pressure level in dB, null when missing"`
}

// Contribution is the share of total energy one row accounts for
type Contribution struct {
	Index int     `json:"index" doc:"Row position"`
	Name  string  `json:"name" doc:"Source name"`
	Level float64 `json:"level_db" doc:"Sound pressure level in dB"`
	Share float64 `json:"share" minimum:"0" maximum:"1" doc:"Fraction of the total acoustic energy"`
}

// ResultBody is the aggregate of a list of noise sources
type ResultBody struct {
	Total         float64        `json:"total_db" doc:"Energetic sum of all valid levels in dB"`
	Readout       string         `json:"readout" example:"66.76 dB" doc:"Total formatted for display"`
	ActiveSources int            `json:"active_sources" doc:"Number of rows with a level"`
	Warning       string         `json:"warning,omitempty" doc:"Set when no row has a level"`
	Contributions []Contribution `json:"contributions" doc:"Per-source energy share"`
}

// SourcesBody is the table of a session together with its aggregate
type SourcesBody struct {
	Sources []SourceRow `json:"sources" doc:"Noise sources in table order"`
	Result  ResultBody  `json:"result" doc:"Aggregate of the sources"`
}

// ListSourcesResponse represents the caller's noise source table
type ListSourcesResponse struct {
	Body SourcesBody
}

// AddSourceRequest represents a request to append a row. An empty body adds a placeholder row.
type AddSourceRequest struct {
	Body struct {
		Name  string   `json:"name,omitempty" maxLength:"120" doc:"Source name, placeholder when empty"`
		Level *float64 `json:"level_db,omitempty" minimum:"0" maximum:"200" doc:"Sound pressure level in dB"`
	} `required:"false"`
}

// AddSourceResponse represents the table after a row was appended
type AddSourceResponse struct {
	Body struct {
		Index int `json:"index" doc:"Position of the new row"`
		SourcesBody
	}
}

// UpdateSourceRequest represents a partial edit of one row
type UpdateSourceRequest struct {
	Index int `path:"index" minimum:"0" doc:"Row position"`
	Body  struct {
		Name       *string  `json:"name,omitempty" maxLength:"120" doc:"New name, placeholder when blank"`
		Level      *float64 `json:"level_db,omitempty" minimum:"0" maximum:"200" doc:"New level in dB"`
		ClearLevel bool     `json:"clear_level,omitempty" doc:"Mark the level as missing"`
	}
}

// SourceIndexRequest addresses one row by position
type SourceIndexRequest struct {
	Index int `path:"index" minimum:"0" doc:"Row position"`
}

// CalculateSource is one input of a stateless calculation
type CalculateSource struct {
	Name  string   `json:"name,omitempty" doc:"Optional label"`
	Level *float64 `json:"level_db,omitempty" nullable:"true" doc:"Level in dB, null or absent to skip"`
}

// CalculateRequest represents a stateless summation request
type CalculateRequest struct {
	Body struct {
		Sources []CalculateSource `json:"sources" maxItems:"1000" doc:"Sources to combine"`
	}
}

// CalculateResponse represents the result of a stateless summation
type CalculateResponse struct {
	Body ResultBody
}
