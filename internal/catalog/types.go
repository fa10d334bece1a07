package catalog

import "time"

// SpeechStatus is the lifecycle flag on a Speech record.
type SpeechStatus string

const (
	SpeechActive SpeechStatus = "active"
	SpeechHidden SpeechStatus = "hidden"
)

// Speech is immutable once ingested except for Status.
type Speech struct {
	ID            string
	Title         string
	Date          *string // YYYY-MM-DD, nil when unknown
	Source        string
	RallyLocation *string
	VideoURL      string
	AudioURL      string
	TranscriptURL string
	Transcript    *string
	Duration      string
	ThumbnailURL  string
	Status        SpeechStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// WorkflowStatus enumerates the stage of the workflow state machine.
type WorkflowStatus string

const (
	WorkflowDraft           WorkflowStatus = "draft"
	WorkflowScriptGenerated WorkflowStatus = "script_generated"
	WorkflowScriptUploaded  WorkflowStatus = "script_uploaded"
	WorkflowAudioGenerated  WorkflowStatus = "audio_generated"
	WorkflowFinalized       WorkflowStatus = "finalized"
)

// Workflow is the central mutable state carrier for an in-progress podcast.
type Workflow struct {
	ID        string
	Name      string
	SpeechIDs []string
	Script    *string
	AudioURL  *string
	RSSURL    *string
	Status    WorkflowStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WorkflowFields is a partial update; nil fields are left unchanged.
type WorkflowFields struct {
	Script   *string
	AudioURL *string
	RSSURL   *string
	Status   *WorkflowStatus
}

// ModelCategory classifies a CuratedModel's standing.
type ModelCategory string

const (
	CategoryTopOverall ModelCategory = "top_overall"
	CategoryTopFree    ModelCategory = "top_free"
	CategoryDiscovered ModelCategory = "discovered"
	CategoryFallback   ModelCategory = "fallback"
)

// CuratedModel is a catalog entry for an LLM model available via the pool.
type CuratedModel struct {
	ID               string
	Name             string
	Provider         string
	Description      string
	Category         ModelCategory
	PerformanceScore float64
	UsageCount       int64
	AvgResponseTime  float64
	SuccessRate      float64
	LastUsed         *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// KeyValidation is the short-lived cached verdict for a key's secure hash.
type KeyValidation struct {
	KeyHash     string
	IsValid     bool
	ModelCount  int
	ErrorCode   *string
	ValidatedAt time.Time
	ExpiresAt   time.Time
}

// Event is an append-only analytics/error/performance record.
type Event struct {
	ID        string
	EventType string
	Data      string // JSON payload, opaque to the store
	IP        string
	UserAgent string
	Timestamp time.Time
}

// FeedbackRecord is an append-only end-of-episode rating.
type FeedbackRecord struct {
	ID            string
	OverallRating int
	ScriptRating  int
	AudioRating   int
	Comments      string
	Recommend     bool
	SessionID     string
	CreatedAt     time.Time
}

// SearchFilter parameterizes SearchSpeeches.
type SearchFilter struct {
	Keyword   string
	StartDate string
	EndDate   string
	Limit     int
	Offset    int
}

// EventFilter parameterizes ListEvents.
type EventFilter struct {
	EventType string
	Since     *time.Time
	Limit     int
}
