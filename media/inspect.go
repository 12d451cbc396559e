package media

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abema/go-mp4"
	"github.com/gabriel-vasile/mimetype"
	"github.com/nazar-zhcet26/Tenant-management/models"
	"github.com/rwcarlsen/goexif/exif"
)

var ErrUnsupportedContainer = errors.New("unable to read video metadata")

// Inspector reads what the attachment checks need from an uploaded file.
type Inspector interface {
	ContentType(r io.ReadSeeker) (string, error)
	VideoDuration(r io.ReadSeeker) (time.Duration, error)
	PhotoCoordinates(r io.ReadSeeker) (*models.Coordinates, error)
}

type FileInspector struct{}

// ContentType sniffs the file header and rewinds r.
func (FileInspector) ContentType(r io.ReadSeeker) (string, error) {
	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		return "", err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return mtype.String(), nil
}

// VideoDuration reads the movie header of an ISO-BMFF file (mp4, mov, m4v, 3gp).
func (FileInspector) VideoDuration(r io.ReadSeeker) (time.Duration, error) {
	defer r.Seek(0, io.SeekStart)

	info, err := mp4.Probe(r)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnsupportedContainer, err)
	}
	if info.Timescale == 0 {
		return 0, ErrUnsupportedContainer
	}
	seconds := float64(info.Duration) / float64(info.Timescale)
	return time.Duration(seconds * float64(time.Second)), nil
}

// PhotoCoordinates returns the EXIF GPS position of a JPEG, or nil when absent.
func (FileInspector) PhotoCoordinates(r io.ReadSeeker) (*models.Coordinates, error) {
	defer r.Seek(0, io.SeekStart)

	x, err := exif.Decode(r)
	if err != nil {
		return nil, nil
	}
	lat, lng, err := x.LatLong()
	if err != nil {
		return nil, nil
	}
	return &models.Coordinates{Latitude: lat, Longitude: lng}, nil
}

// MatchesKind reports whether the sniffed content type is acceptable for kind.
func MatchesKind(contentType string, kind models.AttachmentKind) bool {
	return strings.HasPrefix(contentType, kind.MIMEPrefix())
}

// IsJPEG is used to decide whether EXIF is worth reading.
func IsJPEG(contentType string) bool {
	return contentType == "image/jpeg"
}
