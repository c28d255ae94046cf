package smoke

import "time"

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL string        // Base URL of the service
	Prefix  string        // API prefix the courses router is mounted on
	Creates int           // Number of courses created by the load phase
	Workers int           // Number of concurrent workers
	BaseID  int           // First courseId used; the run owns [BaseID, BaseID+Creates]
	Timeout time.Duration // HTTP request timeout
	Verbose bool          // Enable verbose logging
}

func (c *Config) coursesURL() string {
	return c.BaseURL + c.Prefix + "/courses"
}

// Envelope is the response shape returned by the course routes.
type Envelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    any              `json:"data,omitempty"`
	Errors  string           `json:"errors,omitempty"`
	Error   string           `json:"error,omitempty"`
	Status  int              `json:"-"`
	Link    string           `json:"-"`
	Courses []map[string]any `json:"-"`
}

// Stats holds run statistics.
type Stats struct {
	ScenarioSteps    int
	CreatesSubmitted int
	CreatesOK        int
	CreatesFailed    int
	DuplicatesOK     int
	DuplicatesWrong  int
	Deleted          int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
