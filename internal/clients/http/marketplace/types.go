package marketplace

import (
	"errors"
	"time"
)

// DocumentUpload is one file of the provider registration form.
type DocumentUpload struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// ProviderRegistration is the multipart registration form.
type ProviderRegistration struct {
	FullName     string
	BusinessName string
	Email        string
	Phone        string
	Password     string
	Address      string
	Description  string
	Documents    []DocumentUpload
}

// Multipart file fields of the registration form.
const (
	FieldGovernmentID    = "governmentId"
	FieldBusinessLicense = "businessLicense"
	FieldProofOfAddress  = "proofOfAddress"
	FieldTaxCertificate  = "taxCertificate"
)

type ProviderSummary struct {
	DisplayName  string `json:"displayName"`
	BusinessName string `json:"businessName"`
	Email        string `json:"email"`
}

type ProviderResponse struct {
	ID       int64           `json:"id"`
	Provider ProviderSummary `json:"provider"`
}

func (r *ProviderResponse) validate() error {
	if r.ID <= 0 {
		return errors.New("response is missing the provider id")
	}
	return nil
}

type CategoryRequest struct {
	CategoryIDs []int64 `json:"categoryIds"`
}

type CategoryResponse struct {
	Registered        []int64 `json:"registered"`
	AlreadyRegistered []int64 `json:"alreadyRegistered"`
}

func (r *CategoryResponse) validate() error {
	if r.Registered == nil && r.AlreadyRegistered == nil {
		return errors.New("response lists no categories")
	}
	return nil
}

type ServiceRequest struct {
	CategoryID      int64    `json:"categoryId"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	Price           *float64 `json:"price,omitempty"`
	DurationMinutes *int     `json:"durationMinutes,omitempty"`
	Active          bool     `json:"active"`
}

type ServiceResponse struct {
	ID              int64    `json:"id"`
	CategoryID      int64    `json:"categoryId"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Price           *float64 `json:"price"`
	DurationMinutes *int     `json:"durationMinutes"`
	Active          bool     `json:"active"`
}

func (r *ServiceResponse) validate() error {
	if r.ID <= 0 {
		return errors.New("response is missing the service id")
	}
	return nil
}

// PhotoUpload is one file of the photo upload form.
type PhotoUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Photo struct {
	ID       int64  `json:"id"`
	URL      string `json:"url"`
	Position int    `json:"position"`
}

type PhotoResult struct {
	Filename string `json:"filename"`
	Stored   bool   `json:"stored"`
	Photo    *Photo `json:"photo,omitempty"`
	Error    string `json:"error,omitempty"`
}

type PhotoUploadResponse struct {
	Results []PhotoResult `json:"results"`
}

func (r *PhotoUploadResponse) validate() error {
	if r.Results == nil {
		return errors.New("response is missing per-photo results")
	}
	return nil
}

type ScheduleSlot struct {
	DayOfWeek string `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type ScheduleRequest struct {
	Schedules []ScheduleSlot `json:"schedules"`
}

type ScheduleRef struct {
	ID int64 `json:"id"`
}

type ScheduleResult struct {
	DayOfWeek string       `json:"dayOfWeek"`
	Created   bool         `json:"created"`
	Schedule  *ScheduleRef `json:"schedule,omitempty"`
	Error     string       `json:"error,omitempty"`
}

type ScheduleResponse struct {
	Results []ScheduleResult `json:"results"`
}

func (r *ScheduleResponse) validate() error {
	if r.Results == nil {
		return errors.New("response is missing per-entry results")
	}
	return nil
}

type SessionRequest struct {
	ProviderID int64  `json:"providerId"`
	Email      string `json:"email"`
}

type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (r *SessionResponse) validate() error {
	if r.Token == "" {
		return errors.New("response is missing the session token")
	}
	return nil
}

// Problem is an RFC 7807 error body; Message covers backends that answer {"message": ...}.
type Problem struct {
	Type    string `json:"type,omitempty"`
	Title   string `json:"title,omitempty"`
	Status  int    `json:"status,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Message string `json:"message,omitempty"`
}
