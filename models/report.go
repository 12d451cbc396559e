package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportCategory enum
type ReportCategory string

const (
	Plumbing      ReportCategory = "plumbing"
	Electrical    ReportCategory = "electrical"
	HVAC          ReportCategory = "hvac"
	Appliances    ReportCategory = "appliances"
	Structural    ReportCategory = "structural"
	PestControl   ReportCategory = "pest_control"
	LocksSecurity ReportCategory = "locks_security"
	Cleaning      ReportCategory = "cleaning"
	Other         ReportCategory = "other"
)

var validCategories = map[ReportCategory]bool{
	Plumbing: true, Electrical: true, HVAC: true, Appliances: true, Structural: true,
	PestControl: true, LocksSecurity: true, Cleaning: true, Other: true,
}

func (c ReportCategory) Valid() bool {
	return validCategories[c]
}

// Urgency enum
type Urgency string

const (
	UrgencyLow       Urgency = "low"
	UrgencyMedium    Urgency = "medium"
	UrgencyHigh      Urgency = "high"
	UrgencyEmergency Urgency = "emergency"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyEmergency:
		return true
	}
	return false
}

// ReportStatus enum. Reports created by tenants always start as Pending.
type ReportStatus string

const (
	Pending ReportStatus = "pending"
)

type Coordinates struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// Report is a submitted maintenance report. It is never modified after insertion.
type Report struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description" json:"description"`
	Category      ReportCategory     `bson:"category" json:"category"`
	Location      string             `bson:"location" json:"location"`
	Address       string             `bson:"address,omitempty" json:"address,omitempty"`
	Urgency       Urgency            `bson:"urgency" json:"urgency"`
	Coordinates   *Coordinates       `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
	Photos        []Attachment       `bson:"photos" json:"photos"`
	Videos        []Attachment       `bson:"videos" json:"videos"`
	Status        ReportStatus       `bson:"status" json:"status"`
	SubmittedBy   string             `bson:"submittedBy" json:"submittedBy"`
	DateSubmitted time.Time          `bson:"dateSubmitted" json:"dateSubmitted"`
}

// ReportListItem is a report as rendered in the list view.
type ReportListItem struct {
	Report
	PhotoCount int `json:"photoCount"`
	VideoCount int `json:"videoCount"`
}

func NewReportListItem(r Report) ReportListItem {
	return ReportListItem{Report: r, PhotoCount: len(r.Photos), VideoCount: len(r.Videos)}
}
