package models

import "time"

// AttachmentKind enum
type AttachmentKind string

const (
	KindPhoto AttachmentKind = "photo"
	KindVideo AttachmentKind = "video"
)

const (
	MaxPhotoSize     int64 = 10 * 1024 * 1024
	MaxVideoSize     int64 = 50 * 1024 * 1024
	MaxVideoDuration       = 60 * time.Second
)

func (k AttachmentKind) Valid() bool {
	return k == KindPhoto || k == KindVideo
}

// MaxSize returns the upload limit for the kind.
func (k AttachmentKind) MaxSize() int64 {
	if k == KindVideo {
		return MaxVideoSize
	}
	return MaxPhotoSize
}

// MIMEPrefix is the top-level media type a file of this kind must have.
func (k AttachmentKind) MIMEPrefix() string {
	if k == KindVideo {
		return "video/"
	}
	return "image/"
}

// Attachment describes a staged photo or video. The file itself lives in the
// blob store under ID; PreviewURL serves it back.
type Attachment struct {
	ID          string         `bson:"id" json:"id"`
	Kind        AttachmentKind `bson:"kind" json:"kind"`
	PreviewURL  string         `bson:"previewUrl" json:"previewUrl"`
	Name        string         `bson:"name" json:"name"`
	Size        int64          `bson:"size" json:"size"`
	ContentType string         `bson:"contentType" json:"contentType"`
	Duration    float64        `bson:"duration,omitempty" json:"duration,omitempty"` // seconds, videos only
	Coordinates *Coordinates   `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
}

// RejectedFile records why a file in an upload batch was skipped.
type RejectedFile struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}
