package submit

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDPrefix marks ids assigned to submissions.
const IDPrefix = "sub-"

// RowHeader names the columns of [Entry.Row], matching the pending tab.
var RowHeader = []string{
	"id", "name", "category", "description", "url", "guideUrl", "imageUrl", "emoji",
	"productImages", "tags", "customCategoryName", "customCategoryColor", "submittedAt",
}

// Entry is a validated draft waiting for moderation.
type Entry struct {
	ID          string    `json:"id" bson:"_id"`
	Draft       `bson:",inline"`
	SubmittedAt time.Time `json:"submittedAt" bson:"submitted_at"`
}

// NewEntry assigns a fresh id to a validated draft.
func NewEntry(d Draft, at time.Time) Entry {
	return Entry{ID: IDPrefix + uuid.NewString(), Draft: d, SubmittedAt: at.UTC()}
}

// Row returns the entry as a sheet row in [RowHeader] order.
func (e Entry) Row() []string {
	tags := make([]string, len(e.Tags))
	for i, t := range e.Tags {
		tags[i] = string(t)
	}
	return []string{
		e.ID,
		e.Name,
		e.Category,
		e.Description,
		e.URL,
		e.GuideURL,
		e.ImageURL,
		e.Emoji,
		strings.Join(e.ProductImages, "|"),
		strings.Join(tags, "|"),
		e.CustomCategoryName,
		e.CustomCategoryColor,
		e.SubmittedAt.Format(time.RFC3339),
	}
}
