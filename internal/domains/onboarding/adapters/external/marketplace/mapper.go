package marketplace

import (
	"strings"

	marketplaceclient "github.com/Apurer/provider-onboarding/internal/clients/http/marketplace"
	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/domain"
	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/ports"
)

const noResultReported = "no result reported"

var documentFields = map[domain.DocumentKind]string{
	domain.DocumentGovernmentID:    marketplaceclient.FieldGovernmentID,
	domain.DocumentBusinessLicense: marketplaceclient.FieldBusinessLicense,
	domain.DocumentProofOfAddress:  marketplaceclient.FieldProofOfAddress,
	domain.DocumentTaxCertificate:  marketplaceclient.FieldTaxCertificate,
}

// ToRegistration converts the basic info form into the backend's multipart payload.
func ToRegistration(info domain.BasicInfo, documents []domain.Document) marketplaceclient.ProviderRegistration {
	uploads := make([]marketplaceclient.DocumentUpload, 0, len(documents))
	for _, doc := range documents {
		field, ok := documentFields[doc.Kind]
		if !ok {
			continue
		}
		uploads = append(uploads, marketplaceclient.DocumentUpload{
			Field:       field,
			Filename:    doc.Filename,
			ContentType: doc.ContentType,
			Data:        doc.Data,
		})
	}
	return marketplaceclient.ProviderRegistration{
		FullName:     info.FullName,
		BusinessName: info.BusinessName,
		Email:        info.Email,
		Phone:        info.Phone,
		Password:     info.Password,
		Address:      info.Address,
		Description:  info.Description,
		Documents:    uploads,
	}
}

// ToIdentity builds the provider identity, falling back to submitted values the
// backend did not echo.
func ToIdentity(resp marketplaceclient.ProviderResponse, info domain.BasicInfo) domain.ProviderIdentity {
	identity := domain.ProviderIdentity{
		ID:           resp.ID,
		DisplayName:  strings.TrimSpace(resp.Provider.DisplayName),
		BusinessName: strings.TrimSpace(resp.Provider.BusinessName),
		Email:        strings.TrimSpace(resp.Provider.Email),
	}
	if identity.DisplayName == "" {
		identity.DisplayName = info.FullName
	}
	if identity.BusinessName == "" {
		identity.BusinessName = info.BusinessName
	}
	if identity.Email == "" {
		identity.Email = info.Email
	}
	return identity
}

// ToServiceRequest converts draft fields into the create-service payload.
func ToServiceRequest(fields domain.ServiceFields) marketplaceclient.ServiceRequest {
	return marketplaceclient.ServiceRequest{
		CategoryID:      fields.CategoryID,
		Title:           fields.Title,
		Description:     fields.Description,
		Price:           fields.Price,
		DurationMinutes: fields.DurationMinutes,
		Active:          fields.Active,
	}
}

// ToPhotoUploads keeps attachment order.
func ToPhotoUploads(photos []domain.PhotoAttachment) []marketplaceclient.PhotoUpload {
	out := make([]marketplaceclient.PhotoUpload, 0, len(photos))
	for _, p := range photos {
		out = append(out, marketplaceclient.PhotoUpload{Filename: p.Filename, ContentType: p.ContentType, Data: p.Data})
	}
	return out
}

// FromPhotoResults pairs every attachment with a backend result by filename, in order.
// Attachments the backend did not mention are reported as failed.
func FromPhotoResults(photos []domain.PhotoAttachment, results []marketplaceclient.PhotoResult) []ports.PhotoUploadResult {
	byName := map[string][]marketplaceclient.PhotoResult{}
	for _, r := range results {
		byName[r.Filename] = append(byName[r.Filename], r)
	}
	out := make([]ports.PhotoUploadResult, 0, len(photos))
	for _, p := range photos {
		res := ports.PhotoUploadResult{AttachmentID: p.ID, Filename: p.Filename}
		queue := byName[p.Filename]
		if len(queue) == 0 {
			res.Error = noResultReported
			out = append(out, res)
			continue
		}
		match := queue[0]
		byName[p.Filename] = queue[1:]
		res.Stored = match.Stored
		res.Error = match.Error
		if match.Photo != nil {
			res.RemoteID = match.Photo.ID
			res.URL = match.Photo.URL
		}
		if !res.Stored && res.Error == "" {
			res.Error = "photo was not stored"
		}
		out = append(out, res)
	}
	return out
}

// ToScheduleSlots converts schedule entries into wire slots.
func ToScheduleSlots(entries []domain.ScheduleEntry) []marketplaceclient.ScheduleSlot {
	out := make([]marketplaceclient.ScheduleSlot, 0, len(entries))
	for _, e := range entries {
		out = append(out, marketplaceclient.ScheduleSlot{
			DayOfWeek: domain.WeekdayName(e.Weekday),
			StartTime: e.Start.String(),
			EndTime:   e.End.String(),
		})
	}
	return out
}

// FromScheduleResults pairs every entry with the backend result for its weekday.
func FromScheduleResults(entries []domain.ScheduleEntry, results []marketplaceclient.ScheduleResult) []ports.ScheduleCreationResult {
	byDay := make(map[string]marketplaceclient.ScheduleResult, len(results))
	for _, r := range results {
		day, err := domain.ParseWeekday(r.DayOfWeek)
		if err != nil {
			continue
		}
		byDay[domain.WeekdayName(day)] = r
	}
	out := make([]ports.ScheduleCreationResult, 0, len(entries))
	for _, e := range entries {
		res := ports.ScheduleCreationResult{EntryID: e.ID, Weekday: e.Weekday}
		match, ok := byDay[domain.WeekdayName(e.Weekday)]
		switch {
		case !ok:
			res.Error = noResultReported
		case match.Created:
			res.Created = true
			if match.Schedule != nil {
				res.RemoteID = match.Schedule.ID
			}
		default:
			res.Error = match.Error
			if res.Error == "" {
				res.Error = "schedule entry was not created"
			}
		}
		out = append(out, res)
	}
	return out
}
