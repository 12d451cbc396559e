package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Draft is the in-progress report a tenant edits before submitting. All
// mutating helpers return a modified copy and leave the receiver untouched.
type Draft struct {
	ID          string         `json:"id"`
	OwnerID     string         `json:"ownerId"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    ReportCategory `json:"category"`
	Location    string         `json:"location"`
	Address     string         `json:"address"`
	Urgency     Urgency        `json:"urgency"`
	Coordinates *Coordinates   `json:"coordinates,omitempty"`
	Photos      []Attachment   `json:"photos"`
	Videos      []Attachment   `json:"videos"`
	Submitting  bool           `json:"submitting"`
	Locating    bool           `json:"locating"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`

	SubmittingSince time.Time `json:"submittingSince"`
	LocatingSince   time.Time `json:"locatingSince"`
}

// BusyTimeout is the longest a submission or location lookup may hold a
// draft. A flag older than this belongs to an operation that never finished.
const BusyTimeout = 30 * time.Second

// DraftUpdate carries the fields a client wants to change; nil means unchanged.
type DraftUpdate struct {
	Title       *string `json:"title,omitempty" binding:"omitempty,max=200"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=2000"`
	Category    *string `json:"category,omitempty"`
	Location    *string `json:"location,omitempty" binding:"omitempty,max=200"`
	Urgency     *string `json:"urgency,omitempty"`
}

func NewDraft(id, ownerID string, now time.Time) Draft {
	return Draft{
		ID:        id,
		OwnerID:   ownerID,
		Urgency:   UrgencyMedium,
		Photos:    []Attachment{},
		Videos:    []Attachment{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy.
func (d Draft) Clone() Draft {
	c := d
	c.Photos = append([]Attachment{}, d.Photos...)
	c.Videos = append([]Attachment{}, d.Videos...)
	if d.Coordinates != nil {
		coords := *d.Coordinates
		c.Coordinates = &coords
	}
	return c
}

// Reset returns an empty draft with the same identity.
func (d Draft) Reset(now time.Time) Draft {
	fresh := NewDraft(d.ID, d.OwnerID, d.CreatedAt)
	fresh.UpdatedAt = now
	return fresh
}

// WithSubmitting sets or clears the submitting flag.
func (d Draft) WithSubmitting(on bool, now time.Time) Draft {
	c := d.Clone()
	c.Submitting = on
	c.SubmittingSince = time.Time{}
	if on {
		c.SubmittingSince = now
	}
	return c
}

// WithLocating sets or clears the locating flag.
func (d Draft) WithLocating(on bool, now time.Time) Draft {
	c := d.Clone()
	c.Locating = on
	c.LocatingSince = time.Time{}
	if on {
		c.LocatingSince = now
	}
	return c
}

// Settle drops submitting and locating flags older than BusyTimeout.
func (d Draft) Settle(now time.Time) Draft {
	c := d.Clone()
	if c.Submitting && now.Sub(c.SubmittingSince) >= BusyTimeout {
		c = c.WithSubmitting(false, now)
	}
	if c.Locating && now.Sub(c.LocatingSince) >= BusyTimeout {
		c = c.WithLocating(false, now)
	}
	return c
}

// Apply returns a copy of d with the update's fields set. Unknown category or
// urgency values are rejected without touching the draft.
func (d Draft) Apply(u DraftUpdate, now time.Time) (Draft, error) {
	c := d.Clone()
	if u.Title != nil {
		c.Title = *u.Title
	}
	if u.Description != nil {
		c.Description = *u.Description
	}
	if u.Category != nil {
		category := ReportCategory(strings.TrimSpace(*u.Category))
		if category != "" && !category.Valid() {
			return d, &ValidationError{Field: "category", Message: "Invalid category"}
		}
		c.Category = category
	}
	if u.Location != nil {
		c.Location = *u.Location
	}
	if u.Urgency != nil {
		urgency := Urgency(strings.TrimSpace(*u.Urgency))
		if !urgency.Valid() {
			return d, &ValidationError{Field: "urgency", Message: "Invalid urgency"}
		}
		c.Urgency = urgency
	}
	c.UpdatedAt = now
	return c, nil
}

// WithLocation sets coordinates and the resolved address.
func (d Draft) WithLocation(coords Coordinates, address string, now time.Time) Draft {
	c := d.Clone()
	c.Coordinates = &coords
	c.Address = address
	c.UpdatedAt = now
	return c
}

// WithoutLocation clears coordinates and address only.
func (d Draft) WithoutLocation(now time.Time) Draft {
	c := d.Clone()
	c.Coordinates = nil
	c.Address = ""
	c.UpdatedAt = now
	return c
}

// WithAttachments appends to the sequence of the given kind, keeping order.
func (d Draft) WithAttachments(kind AttachmentKind, added []Attachment, now time.Time) Draft {
	c := d.Clone()
	if kind == KindVideo {
		c.Videos = append(c.Videos, added...)
	} else {
		c.Photos = append(c.Photos, added...)
	}
	c.UpdatedAt = now
	return c
}

// WithoutAttachment removes the attachment with the given id from either
// sequence. The removed descriptor is returned so its blob can be released.
func (d Draft) WithoutAttachment(id string, now time.Time) (Draft, Attachment, bool) {
	c := d.Clone()
	for i, a := range c.Photos {
		if a.ID == id {
			c.Photos = append(c.Photos[:i], c.Photos[i+1:]...)
			c.UpdatedAt = now
			return c, a, true
		}
	}
	for i, a := range c.Videos {
		if a.ID == id {
			c.Videos = append(c.Videos[:i], c.Videos[i+1:]...)
			c.UpdatedAt = now
			return c, a, true
		}
	}
	return d, Attachment{}, false
}

// Attachments lists photos followed by videos.
func (d Draft) Attachments() []Attachment {
	all := make([]Attachment, 0, len(d.Photos)+len(d.Videos))
	all = append(all, d.Photos...)
	return append(all, d.Videos...)
}

// Validate checks the fields required for submission.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return &ValidationError{Field: "title", Message: "Title is required"}
	}
	if strings.TrimSpace(d.Description) == "" {
		return &ValidationError{Field: "description", Message: "Description is required"}
	}
	if d.Category == "" {
		return &ValidationError{Field: "category", Message: "Category is required"}
	}
	if !d.Category.Valid() {
		return &ValidationError{Field: "category", Message: "Invalid category"}
	}
	if !d.Urgency.Valid() {
		return &ValidationError{Field: "urgency", Message: "Invalid urgency"}
	}
	return nil
}

// ToReport builds the immutable report record for a submission.
func (d Draft) ToReport(submittedBy string, now time.Time) Report {
	c := d.Clone()
	return Report{
		ID:            primitive.NewObjectID(),
		Title:         c.Title,
		Description:   c.Description,
		Category:      c.Category,
		Location:      c.Location,
		Address:       c.Address,
		Urgency:       c.Urgency,
		Coordinates:   c.Coordinates,
		Photos:        c.Photos,
		Videos:        c.Videos,
		Status:        Pending,
		SubmittedBy:   submittedBy,
		DateSubmitted: now,
	}
}
