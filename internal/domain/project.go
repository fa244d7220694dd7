package domain

import (
	"time"

	"github.com/google/uuid"
)

// Project statuses.
const (
	ProjectStatusDraft     = "draft"
	ProjectStatusPublished = "published"
	ProjectStatusArchived  = "archived"
)

// Project represents a website a user owns, created as the entitlement
// when a template purchase completes.
type Project struct {
	ID             string                 `json:"id"`
	UserID         string                 `json:"userId"`
	Name           string                 `json:"name"`
	Description    string                 `json:"description"`
	TemplateID     string                 `json:"templateId"`
	Customizations map[string]interface{} `json:"customizations"`
	Status         string                 `json:"status"`
	PublishedURL   *string                `json:"publishedUrl,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
	UpdatedAt      time.Time              `json:"updatedAt"`
}

// WebsiteResponse is the dashboard "Website" view: the latest project and
// whether a completed transaction exists for its template.
type WebsiteResponse struct {
	Project *Project `json:"project"`
	Paid    bool     `json:"paid"`
}

// NewProjectID generates a new UUID for a project.
func NewProjectID() string {
	return uuid.New().String()
}
