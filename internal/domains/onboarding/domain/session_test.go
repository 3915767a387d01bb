package domain

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func registeredSession(t *testing.T, categories ...int64) *Session {
	t.Helper()
	s := NewSession("s-1", time.Now())
	require.NoError(t, s.RecordRegistration(ProviderIdentity{ID: 7, Email: "p@example.com"}))
	if len(categories) > 0 {
		require.NoError(t, s.BeginCategorySubmission(NewCategorySet(categories...)))
		require.NoError(t, s.ConfirmCategories())
	}
	return s
}

func TestSession_StepsOnlyMoveForward(t *testing.T) {
	s := NewSession("s-1", time.Now())
	_, err := s.ToggleCategory(1)
	require.ErrorIs(t, err, ErrStepMismatch)

	require.NoError(t, s.RecordRegistration(ProviderIdentity{ID: 1}))
	require.ErrorIs(t, s.RecordRegistration(ProviderIdentity{ID: 2}), ErrStepMismatch)
	require.Equal(t, int64(1), s.Identity.ID)

	err = s.BeginCategorySubmission(CategorySet{})
	require.ErrorIs(t, err, ErrValidation)
	require.Equal(t, StepBasicInfoSubmitted, s.Step)

	require.NoError(t, s.BeginCategorySubmission(NewCategorySet(3)))
	require.Equal(t, StepCategoriesSelected, s.Step)
	selected, err := s.ToggleCategory(4)
	require.NoError(t, err)
	require.True(t, selected)

	require.NoError(t, s.ConfirmCategories())
	_, err = s.ToggleCategory(5)
	require.ErrorIs(t, err, ErrStepMismatch)
	require.ErrorIs(t, s.BeginCategorySubmission(NewCategorySet(9)), ErrStepMismatch)
}

func TestSession_FinishRequiresCompletedService(t *testing.T) {
	s := registeredSession(t, 1, 2)
	require.False(t, s.CanFinish())
	require.ErrorIs(t, s.Finish(AuthSession{Token: "t"}), ErrNothingCompleted)

	require.NoError(t, s.CompleteService(ServiceRecord{CategoryID: 1, ServiceID: 10, Confirmed: true}))
	require.True(t, s.CanAddService())
	require.True(t, s.CanFinish())
	require.NoError(t, s.Finish(AuthSession{Token: "t"}))
	require.Equal(t, StepCompleted, s.Step)
	require.Equal(t, "t", s.Auth.Token)
}

func TestSession_TrackerStaysWithinSelection(t *testing.T) {
	s := registeredSession(t, 1)
	err := s.CompleteService(ServiceRecord{CategoryID: 99})
	require.ErrorIs(t, err, ErrCategoryNotSelected)
	require.Equal(t, 0, s.Completed.Len())
	require.True(t, s.Completed.SubsetOf(s.Selection))
}

func TestSession_AcknowledgementAcceptAndDecline(t *testing.T) {
	s := registeredSession(t, 1, 2)
	s.Draft.CategoryID = 1
	s.Draft.Title = "Deep clean"

	s.HoldForAcknowledgement(PendingAcknowledgement{CategoryID: 1, Title: "Deep clean", Reason: "garbled"})
	require.ErrorIs(t, s.RequireDraftEditable("edit draft"), ErrAcknowledgementPending)
	require.ErrorIs(t, s.Finish(AuthSession{}), ErrAcknowledgementPending)

	_, err := s.ResolveAcknowledgement(false, time.Now())
	require.NoError(t, err)
	require.Nil(t, s.Pending)
	require.Equal(t, "Deep clean", s.Draft.Title)
	require.Equal(t, 0, s.Completed.Len())

	s.HoldForAcknowledgement(PendingAcknowledgement{CategoryID: 1, Title: "Deep clean", Reason: "garbled"})
	pending, err := s.ResolveAcknowledgement(true, time.Now())
	require.NoError(t, err)
	require.Equal(t, int64(1), pending.CategoryID)
	require.True(t, s.Completed.Has(1))
	require.Empty(t, s.Draft.Title)
	require.False(t, s.Services[0].Confirmed)

	_, err = s.ResolveAcknowledgement(true, time.Now())
	require.ErrorIs(t, err, ErrNoPendingAcknowledgement)
}

func TestSession_CloneIsIndependent(t *testing.T) {
	s := registeredSession(t, 1)
	_, err := s.Draft.Schedule.Add(time.Monday, MustClockTime("09:00"), MustClockTime("10:00"))
	require.NoError(t, err)

	clone := s.Clone()
	clone.Selection.Add(5)
	_, err = clone.Draft.Schedule.Add(time.Tuesday, MustClockTime("09:00"), MustClockTime("10:00"))
	require.NoError(t, err)
	clone.Identity.Email = "changed@example.com"

	require.False(t, s.Selection.Has(5))
	require.Equal(t, 1, s.Draft.Schedule.Len())
	require.Equal(t, "p@example.com", s.Identity.Email)
}

func TestServiceDraft_Validate(t *testing.T) {
	selection := NewCategorySet(1, 2)
	completed := NewCategorySet(2)

	d := NewServiceDraft()
	negative := -1.0
	zero := 0
	d.Price = &negative
	d.DurationMinutes = &zero
	err := d.Validate(selection, completed)
	require.ErrorIs(t, err, ErrValidation)
	verr := err.(*ValidationError)
	require.Contains(t, verr.Fields, "categoryId")
	require.Contains(t, verr.Fields, "title")
	require.Contains(t, verr.Fields, "price")
	require.Contains(t, verr.Fields, "durationMinutes")
	require.Contains(t, verr.Fields, "schedule")

	d.CategoryID = 2
	err = d.Validate(selection, completed)
	require.Equal(t, "already has a service", err.(*ValidationError).Fields["categoryId"])

	d = NewServiceDraft()
	require.NoError(t, d.SetFields(ServiceFields{CategoryID: 1, Title: "  Haircut  ", Active: true}))
	_, err = d.Schedule.Add(time.Monday, MustClockTime("09:00"), MustClockTime("17:00"))
	require.NoError(t, err)
	require.NoError(t, d.Validate(selection, completed))
	require.Equal(t, "Haircut", d.Title)
}

func TestServiceDraft_CategoryPinnedDuringResumption(t *testing.T) {
	d := NewServiceDraft()
	require.NoError(t, d.SetFields(ServiceFields{CategoryID: 1, Title: "A"}))
	d.ResumeServiceID = 44
	require.ErrorIs(t, d.SetFields(ServiceFields{CategoryID: 2, Title: "A"}), ErrDraftCategoryFixed)
	require.NoError(t, d.SetFields(ServiceFields{CategoryID: 1, Title: "B"}))
}

func TestSession_RetainForResumptionDropsStoredPhotos(t *testing.T) {
	s := registeredSession(t, 1)
	for _, name := range []string{"front.png", "back.png", "front.png"} {
		photo, err := NewPhotoAttachment(name, pngHeader)
		require.NoError(t, err)
		require.NoError(t, s.Draft.AttachPhoto(photo))
	}

	s.RetainForResumption(900, []string{"front.png"})
	require.Equal(t, int64(900), s.Draft.ResumeServiceID)
	require.Len(t, s.Draft.Photos, 2)
	require.Equal(t, "back.png", s.Draft.Photos[0].Filename)
	require.Equal(t, "front.png", s.Draft.Photos[1].Filename)
}

func TestPhotoAttachment_SniffsAndLimits(t *testing.T) {
	photo, err := NewPhotoAttachment("front.png", pngHeader)
	require.NoError(t, err)
	require.Equal(t, "image/png", photo.ContentType)
	require.NotEmpty(t, photo.ID)

	_, err = NewPhotoAttachment("notes.png", []byte("just some text"))
	require.ErrorIs(t, err, ErrUnsupportedPhoto)

	_, err = NewPhotoAttachment("empty.png", nil)
	require.ErrorIs(t, err, ErrEmptyPhoto)

	huge := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, MaxPhotoBytes)...)
	_, err = NewPhotoAttachment("huge.png", huge)
	require.ErrorIs(t, err, ErrPhotoTooLarge)

	d := NewServiceDraft()
	for i := 0; i < MaxPhotos; i++ {
		require.NoError(t, d.AttachPhoto(photo))
	}
	require.ErrorIs(t, d.AttachPhoto(photo), ErrTooManyPhotos)
	require.ErrorIs(t, d.RemovePhoto("missing"), ErrPhotoNotFound)
}

func TestValidateRegistration_ReportsEveryField(t *testing.T) {
	err := ValidateRegistration(BasicInfo{Email: "not-an-email", Password: "short"}, []Document{
		{Kind: DocumentGovernmentID, Data: []byte("id")},
	})
	require.ErrorIs(t, err, ErrValidation)
	fields := err.(*ValidationError).Fields
	for _, name := range []string{"fullName", "businessName", "email", "phone", "password", "address",
		"business_license", "proof_of_address", "tax_certificate"} {
		require.Contains(t, fields, name)
	}
	require.NotContains(t, fields, "government_id")

	info := BasicInfo{
		FullName:     "Ada Lovelace",
		BusinessName: "Analytical Cleaning",
		Email:        "ada@example.com",
		Phone:        "+44 20 7946 0000",
		Password:     "correct horse",
		Address:      "1 Engine Way",
	}
	docs := make([]Document, 0, len(RequiredDocuments))
	for _, kind := range RequiredDocuments {
		docs = append(docs, Document{Kind: kind, Filename: string(kind) + ".pdf", Data: []byte("%PDF")})
	}
	require.NoError(t, ValidateRegistration(info, docs))
}
