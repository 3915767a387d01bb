package mapper

import (
	"strings"

	onboardingtypes "github.com/Apurer/provider-onboarding/internal/domains/onboarding/application/types"
	"github.com/Apurer/provider-onboarding/internal/domains/onboarding/domain"
)

// Multipart field names of the basic info form.
const (
	FieldGovernmentID    = "governmentId"
	FieldBusinessLicense = "businessLicense"
	FieldProofOfAddress  = "proofOfAddress"
	FieldTaxCertificate  = "taxCertificate"
	FieldPhoto           = "photo"
)

// DocumentFields names the multipart file field carrying each document.
var DocumentFields = map[domain.DocumentKind]string{
	domain.DocumentGovernmentID:    FieldGovernmentID,
	domain.DocumentBusinessLicense: FieldBusinessLicense,
	domain.DocumentProofOfAddress:  FieldProofOfAddress,
	domain.DocumentTaxCertificate:  FieldTaxCertificate,
}

// BasicInfoForm binds the text fields of the multipart registration form.
type BasicInfoForm struct {
	FullName     string `form:"fullName"`
	BusinessName string `form:"businessName"`
	Email        string `form:"email"`
	Phone        string `form:"phone"`
	Password     string `form:"password"`
	Address      string `form:"address"`
	Description  string `form:"description"`
}

// ToBasicInfo converts the bound form.
func ToBasicInfo(f BasicInfoForm) domain.BasicInfo {
	return domain.BasicInfo{
		FullName:     f.FullName,
		BusinessName: f.BusinessName,
		Email:        f.Email,
		Phone:        f.Phone,
		Password:     f.Password,
		Address:      f.Address,
		Description:  f.Description,
	}
}

// CategorySubmission replaces the selection. Omitting categoryIds submits the toggled selection.
type CategorySubmission struct {
	CategoryIDs []int64 `json:"categoryIds"`
}

// DraftFields replaces the scalar fields of the draft. Active defaults to true.
type DraftFields struct {
	CategoryID      int64    `json:"categoryId"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Price           *float64 `json:"price"`
	DurationMinutes *int     `json:"durationMinutes"`
	Active          *bool    `json:"active"`
}

// ToDraftFieldsInput converts the payload.
func ToDraftFieldsInput(sessionID string, p DraftFields) onboardingtypes.DraftFieldsInput {
	active := true
	if p.Active != nil {
		active = *p.Active
	}
	return onboardingtypes.DraftFieldsInput{
		SessionID: sessionID,
		Fields: domain.ServiceFields{
			CategoryID:      p.CategoryID,
			Title:           p.Title,
			Description:     p.Description,
			Price:           p.Price,
			DurationMinutes: p.DurationMinutes,
			Active:          active,
		},
	}
}

// ScheduleEntryPayload adds one availability window.
type ScheduleEntryPayload struct {
	Weekday string `json:"weekday" binding:"required"`
	Start   string `json:"start" binding:"required"`
	End     string `json:"end" binding:"required"`
}

// ToScheduleEntryInput parses the payload, reporting every malformed field.
func ToScheduleEntryInput(sessionID string, p ScheduleEntryPayload) (onboardingtypes.ScheduleEntryInput, error) {
	verr := &domain.ValidationError{}
	weekday, err := domain.ParseWeekday(p.Weekday)
	if err != nil {
		verr.Add("weekday", err.Error())
	}
	start, err := domain.ParseClockTime(p.Start)
	if err != nil {
		verr.Add("start", err.Error())
	}
	end, err := domain.ParseClockTime(p.End)
	if err != nil {
		verr.Add("end", err.Error())
	}
	if err := verr.ErrOrNil(); err != nil {
		return onboardingtypes.ScheduleEntryInput{}, err
	}
	return onboardingtypes.ScheduleEntryInput{SessionID: sessionID, Weekday: weekday, Start: start, End: end}, nil
}

// ScheduleEntryPatch edits some fields of an availability window.
type ScheduleEntryPatch struct {
	Weekday *string `json:"weekday"`
	Start   *string `json:"start"`
	End     *string `json:"end"`
}

// ToScheduleEntryPatchInput parses the present fields.
func ToScheduleEntryPatchInput(sessionID, entryID string, p ScheduleEntryPatch) (onboardingtypes.ScheduleEntryPatchInput, error) {
	verr := &domain.ValidationError{}
	var patch domain.SchedulePatch
	if p.Weekday != nil {
		weekday, err := domain.ParseWeekday(*p.Weekday)
		if err != nil {
			verr.Add("weekday", err.Error())
		}
		patch.Weekday = &weekday
	}
	if p.Start != nil {
		start, err := domain.ParseClockTime(*p.Start)
		if err != nil {
			verr.Add("start", err.Error())
		}
		patch.Start = &start
	}
	if p.End != nil {
		end, err := domain.ParseClockTime(*p.End)
		if err != nil {
			verr.Add("end", err.Error())
		}
		patch.End = &end
	}
	if err := verr.ErrOrNil(); err != nil {
		return onboardingtypes.ScheduleEntryPatchInput{}, err
	}
	return onboardingtypes.ScheduleEntryPatchInput{
		SessionID: sessionID,
		EntryID:   strings.TrimSpace(entryID),
		Patch:     patch,
	}, nil
}

// Acknowledgement answers an ambiguous submission prompt.
type Acknowledgement struct {
	Accept *bool `json:"accept" binding:"required"`
}
