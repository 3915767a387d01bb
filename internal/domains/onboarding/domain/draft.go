package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	// MaxPhotos caps how many photos one service draft may carry.
	MaxPhotos = 10
	// MaxPhotoBytes caps the size of a single photo.
	MaxPhotoBytes = 5 << 20
)

var (
	ErrTooManyPhotos      = fmt.Errorf("a service accepts at most %d photos", MaxPhotos)
	ErrPhotoTooLarge      = fmt.Errorf("photo exceeds %d bytes", MaxPhotoBytes)
	ErrEmptyPhoto         = errors.New("photo is empty")
	ErrUnsupportedPhoto   = errors.New("photo must be an image")
	ErrPhotoNotFound      = errors.New("photo not found")
	ErrDraftCategoryFixed = errors.New("draft category cannot change while a created service awaits its schedule")
)

// PhotoAttachment is a photo picked for the service being drafted. It is only sent to the
// backend after the service itself exists.
type PhotoAttachment struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}

// NewPhotoAttachment sniffs the content and enforces the size limit.
func NewPhotoAttachment(filename string, data []byte) (PhotoAttachment, error) {
	if len(data) == 0 {
		return PhotoAttachment{}, ErrEmptyPhoto
	}
	if len(data) > MaxPhotoBytes {
		return PhotoAttachment{}, ErrPhotoTooLarge
	}
	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return PhotoAttachment{}, fmt.Errorf("%w: detected %s", ErrUnsupportedPhoto, detected.String())
	}
	name := strings.TrimSpace(filename)
	if name == "" {
		name = "photo" + detected.Extension()
	}
	return PhotoAttachment{
		ID:          uuid.NewString(),
		Filename:    name,
		ContentType: detected.String(),
		Data:        data,
	}, nil
}

// ServiceFields are the scalar form fields of a service draft.
type ServiceFields struct {
	CategoryID      int64    `json:"categoryId"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	Price           *float64 `json:"price,omitempty"`
	DurationMinutes *int     `json:"durationMinutes,omitempty"`
	Active          bool     `json:"active"`
}

// ServiceDraft is the in-progress definition of one service.
type ServiceDraft struct {
	ServiceFields
	Schedule ScheduleSet       `json:"schedule"`
	Photos   []PhotoAttachment `json:"photos,omitempty"`
	// ResumeServiceID is the confirmed id of a service created by an earlier submission
	// whose schedule phase failed. Zero when the next submission must create the service.
	ResumeServiceID int64 `json:"resumeServiceId,omitempty"`
}

// NewServiceDraft returns an empty draft with the active flag on.
func NewServiceDraft() ServiceDraft {
	return ServiceDraft{ServiceFields: ServiceFields{Active: true}}
}

// SetFields replaces the scalar fields. The category is pinned once a service was created.
func (d *ServiceDraft) SetFields(fields ServiceFields) error {
	if d.ResumeServiceID != 0 && fields.CategoryID != d.CategoryID {
		return ErrDraftCategoryFixed
	}
	fields.Title = strings.TrimSpace(fields.Title)
	fields.Description = strings.TrimSpace(fields.Description)
	d.ServiceFields = fields
	return nil
}

// AttachPhoto appends a photo, keeping attachment order.
func (d *ServiceDraft) AttachPhoto(photo PhotoAttachment) error {
	if len(d.Photos) >= MaxPhotos {
		return ErrTooManyPhotos
	}
	d.Photos = append(d.Photos, photo)
	return nil
}

// RemovePhoto drops a pending photo by id.
func (d *ServiceDraft) RemovePhoto(id string) error {
	for i, p := range d.Photos {
		if p.ID == id {
			d.Photos = append(d.Photos[:i], d.Photos[i+1:]...)
			return nil
		}
	}
	return ErrPhotoNotFound
}

// dropPhotos removes one pending photo per filename, first match wins.
func (d *ServiceDraft) dropPhotos(filenames []string) {
	if len(filenames) == 0 {
		return
	}
	settled := make(map[string]int, len(filenames))
	for _, name := range filenames {
		settled[name]++
	}
	kept := make([]PhotoAttachment, 0, len(d.Photos))
	for _, p := range d.Photos {
		if settled[p.Filename] > 0 {
			settled[p.Filename]--
			continue
		}
		kept = append(kept, p)
	}
	d.Photos = kept
}

// PayloadSize is the number of photo bytes the draft carries.
func (d *ServiceDraft) PayloadSize() int {
	total := 0
	for _, p := range d.Photos {
		total += len(p.Data)
	}
	return total
}

// Validate checks the draft against the provider's category selection and the categories
// that already have a completed service.
func (d *ServiceDraft) Validate(selection, completed CategorySet) error {
	verr := &ValidationError{}
	switch {
	case d.CategoryID == 0:
		verr.Add("categoryId", "is required")
	case !selection.Has(d.CategoryID):
		verr.Add("categoryId", "is not one of the selected categories")
	case completed.Has(d.CategoryID):
		verr.Add("categoryId", "already has a service")
	}
	if strings.TrimSpace(d.Title) == "" {
		verr.Add("title", "is required")
	}
	if d.Price != nil && *d.Price < 0 {
		verr.Add("price", "must not be negative")
	}
	if d.DurationMinutes != nil && *d.DurationMinutes <= 0 {
		verr.Add("durationMinutes", "must be positive")
	}
	if err := d.Schedule.Validate(); err != nil {
		verr.Add("schedule", err.Error())
	}
	if len(d.Photos) > MaxPhotos {
		verr.Add("photos", ErrTooManyPhotos.Error())
	}
	return verr.ErrOrNil()
}

// Clone returns a deep copy. Photo bytes are shared since they are never mutated in place.
func (d ServiceDraft) Clone() ServiceDraft {
	out := d
	if d.Price != nil {
		price := *d.Price
		out.Price = &price
	}
	if d.DurationMinutes != nil {
		minutes := *d.DurationMinutes
		out.DurationMinutes = &minutes
	}
	out.Schedule = d.Schedule.Clone()
	out.Photos = append([]PhotoAttachment(nil), d.Photos...)
	return out
}
