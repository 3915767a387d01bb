package marketplace

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "https://marketplace.test/api"

func newMockedClient(t *testing.T) (*Client, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	client, err := NewClient(testBaseURL+"/", WithHTTPClient(&http.Client{Transport: transport}))
	require.NoError(t, err)
	return client, transport
}

func TestNewClient_RequiresAbsoluteURL(t *testing.T) {
	_, err := NewClient("  ")
	require.Error(t, err)
	_, err = NewClient("/relative")
	require.Error(t, err)
}

func TestCreateService_Confirmed(t *testing.T) {
	client, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodPost, testBaseURL+"/providers/42/services",
		func(req *http.Request) (*http.Response, error) {
			raw, _ := io.ReadAll(req.Body)
			require.JSONEq(t, `{"categoryId":3,"title":"Deep clean","active":true}`, string(raw))
			require.Equal(t, "application/json", req.Header.Get("Content-Type"))
			return httpmock.NewStringResponse(http.StatusCreated, `{"id":900,"categoryId":3,"title":"Deep clean","active":true}`), nil
		})

	outcome := client.CreateService(context.Background(), 42, ServiceRequest{CategoryID: 3, Title: "Deep clean", Active: true})
	require.True(t, outcome.IsConfirmed(), outcome.Reason)
	require.Equal(t, int64(900), outcome.Value.ID)
}

func TestClient_SendsUserAgent(t *testing.T) {
	transport := httpmock.NewMockTransport()
	client, err := NewClient(testBaseURL, WithHTTPClient(&http.Client{Transport: transport}), WithUserAgent(" onboarding-api "))
	require.NoError(t, err)
	transport.RegisterResponder(http.MethodPost, testBaseURL+"/providers/42/services",
		func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "onboarding-api", req.Header.Get("User-Agent"))
			return httpmock.NewStringResponse(http.StatusCreated, `{"id":1}`), nil
		})

	outcome := client.CreateService(context.Background(), 42, ServiceRequest{CategoryID: 3, Title: "x"})
	require.True(t, outcome.IsConfirmed(), outcome.Reason)
}

func TestCreateService_UndecodableSuccessIsAmbiguous(t *testing.T) {
	client, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodPost, testBaseURL+"/providers/42/services",
		httpmock.NewStringResponder(http.StatusCreated, `{"id":90`))

	outcome := client.CreateService(context.Background(), 42, ServiceRequest{CategoryID: 3, Title: "x"})
	require.True(t, outcome.IsAmbiguous())
	require.Equal(t, http.StatusCreated, outcome.Status)
	require.Contains(t, outcome.Reason, "decode response body")
}

func TestCreateService_MissingIDIsAmbiguous(t *testing.T) {
	client, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodPost, testBaseURL+"/providers/42/services",
		httpmock.NewStringResponder(http.StatusOK, `{"title":"x"}`))

	outcome := client.CreateService(context.Background(), 42, ServiceRequest{CategoryID: 3, Title: "x"})
	require.True(t, outcome.IsAmbiguous())
	require.Equal(t, "response is missing the service id", outcome.Reason)
}

func TestErrorBodies(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"problem detail", http.StatusUnprocessableEntity, `{"title":"Invalid","detail":"title is taken"}`, "title is taken"},
		{"problem title", http.StatusConflict, `{"title":"Conflict"}`, "Conflict"},
		{"message body", http.StatusBadRequest, `{"message":"bad price"}`, "bad price"},
		{"no body", http.StatusServiceUnavailable, ``, "503"},
		{"html body", http.StatusBadGateway, `<html>oops</html>`, "502"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, transport := newMockedClient(t)
			transport.RegisterResponder(http.MethodPost, testBaseURL+"/sessions",
				httpmock.NewStringResponder(tc.status, tc.body))

			outcome := client.EstablishSession(context.Background(), SessionRequest{ProviderID: 1, Email: "a@b.c"})
			require.True(t, outcome.IsFailed())
			require.Equal(t, tc.status, outcome.Status)
			require.Contains(t, outcome.Reason, tc.want)
		})
	}
}

func TestTransportErrorIsFailed(t *testing.T) {
	client, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodPost, testBaseURL+"/providers/7/categories",
		httpmock.NewErrorResponder(errors.New("connection refused")))

	outcome := client.RegisterCategories(context.Background(), 7, []int64{1, 2})
	require.True(t, outcome.IsFailed())
	require.Zero(t, outcome.Status)
	require.Contains(t, outcome.Reason, "connection refused")
}

func TestRegisterProvider_SendsMultipartForm(t *testing.T) {
	client, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodPost, testBaseURL+"/providers",
		func(req *http.Request) (*http.Response, error) {
			require.NoError(t, req.ParseMultipartForm(1<<20))
			require.Equal(t, "Ada Lovelace", req.FormValue("fullName"))
			require.Equal(t, "ada@example.com", req.FormValue("email"))
			files := req.MultipartForm.File
			for _, field := range []string{FieldGovernmentID, FieldBusinessLicense, FieldProofOfAddress, FieldTaxCertificate} {
				require.Len(t, files[field], 1, field)
			}
			require.Equal(t, "application/pdf", files[FieldGovernmentID][0].Header.Get("Content-Type"))
			return httpmock.NewStringResponse(http.StatusCreated,
				`{"id":42,"provider":{"displayName":"Ada","businessName":"Analytical Cleaning","email":"ada@example.com"}}`), nil
		})

	docs := []DocumentUpload{}
	for _, field := range []string{FieldGovernmentID, FieldBusinessLicense, FieldProofOfAddress, FieldTaxCertificate} {
		docs = append(docs, DocumentUpload{Field: field, Filename: field + ".pdf", ContentType: "application/pdf", Data: []byte("%PDF")})
	}
	outcome := client.RegisterProvider(context.Background(), ProviderRegistration{
		FullName: "Ada Lovelace", BusinessName: "Analytical Cleaning", Email: "ada@example.com",
		Phone: "123456", Password: "secret-pass", Address: "1 Engine Way", Documents: docs,
	})
	require.True(t, outcome.IsConfirmed(), outcome.Reason)
	require.Equal(t, int64(42), outcome.Value.ID)
	require.Equal(t, "Ada", outcome.Value.Provider.DisplayName)
}

func TestUploadServicePhotos_KeepsOrder(t *testing.T) {
	client, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodPost, testBaseURL+"/services/900/photos",
		func(req *http.Request) (*http.Response, error) {
			require.NoError(t, req.ParseMultipartForm(1<<20))
			files := req.MultipartForm.File["photos"]
			require.Len(t, files, 2)
			require.Equal(t, "a.png", files[0].Filename)
			require.Equal(t, "b.png", files[1].Filename)
			return httpmock.NewStringResponse(http.StatusOK,
				`{"results":[{"filename":"a.png","stored":true,"photo":{"id":1,"url":"https://cdn/a.png","position":0}},{"filename":"b.png","stored":false,"error":"too dark"}]}`), nil
		})

	outcome := client.UploadServicePhotos(context.Background(), 900, []PhotoUpload{
		{Filename: "a.png", ContentType: "image/png", Data: []byte("a")},
		{Filename: "b.png", ContentType: "image/png", Data: []byte("b")},
	})
	require.True(t, outcome.IsConfirmed(), outcome.Reason)
	require.Len(t, outcome.Value.Results, 2)
	require.Equal(t, "too dark", outcome.Value.Results[1].Error)
}

func TestCreateServiceSchedules_MissingResultsIsAmbiguous(t *testing.T) {
	client, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodPost, testBaseURL+"/services/900/schedules",
		httpmock.NewStringResponder(http.StatusCreated, `{}`))

	outcome := client.CreateServiceSchedules(context.Background(), 900, []ScheduleSlot{{DayOfWeek: "monday", StartTime: "09:00", EndTime: "17:00"}})
	require.True(t, outcome.IsAmbiguous())
	require.Equal(t, 1, transport.GetCallCountInfo()["POST "+testBaseURL+"/services/900/schedules"])
}
