//go:build pact
// +build pact

package consumer_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/provider-onboarding/internal/clients/http/marketplace"
	pacttest "github.com/Apurer/provider-onboarding/test/pact"
)

func TestMarketplaceContract(t *testing.T) {
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")

	pact.AddInteraction().
		Given(pacttest.StateProviderRegistered).
		UponReceiving("a request to register provider categories").
		WithRequest("POST", fmt.Sprintf("/providers/%d/categories", pacttest.ProviderID), func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{"categoryIds": matchers.EachLike(pacttest.CategoryID, 1)})
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"registered":        matchers.EachLike(pacttest.CategoryID, 1),
				"alreadyRegistered": matchers.Like([]int64{}),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateProviderRegistered).
		UponReceiving("a request to create a service").
		WithRequest("POST", fmt.Sprintf("/providers/%d/services", pacttest.ProviderID), func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{
				"categoryId": pacttest.CategoryID,
				"title":      "Deep cleaning",
				"active":     true,
			})
		}).
		WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"id":         matchers.Like(pacttest.ServiceID),
				"categoryId": matchers.Like(pacttest.CategoryID),
				"title":      matchers.Like("Deep cleaning"),
				"active":     matchers.Like(true),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateCategoryUnknown).
		UponReceiving("a request to create a service in an unknown category").
		WithRequest("POST", fmt.Sprintf("/providers/%d/services", pacttest.ProviderID), func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{
				"categoryId": pacttest.UnknownCategoryID,
				"title":      "Ghost service",
				"active":     true,
			})
		}).
		WillRespondWith(http.StatusUnprocessableEntity, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(matchers.Map{
				"title":  matchers.Like("Unknown category"),
				"status": matchers.Like(http.StatusUnprocessableEntity),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateServiceExists).
		UponReceiving("a request to create service schedules").
		WithRequest("POST", fmt.Sprintf("/services/%d/schedules", pacttest.ServiceID), func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{
				"schedules": matchers.EachLike(matchers.Map{
					"dayOfWeek": matchers.Term("MONDAY", "MONDAY|TUESDAY|WEDNESDAY|THURSDAY|FRIDAY|SATURDAY|SUNDAY"),
					"startTime": matchers.Term("09:00", "^[0-2][0-9]:[0-5][0-9]$"),
					"endTime":   matchers.Term("17:00", "^[0-2][0-9]:[0-5][0-9]$"),
				}, 1),
			})
		}).
		WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"results": matchers.EachLike(matchers.Map{
					"dayOfWeek": matchers.Like("MONDAY"),
					"created":   matchers.Like(true),
					"schedule":  matchers.Map{"id": matchers.Like(501)},
				}, 1),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateProviderRegistered).
		UponReceiving("a request to establish a provider session").
		WithRequest("POST", "/sessions", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{
				"providerId": matchers.Like(pacttest.ProviderID),
				"email":      matchers.Like(pacttest.ProviderEmail),
			})
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"token":     matchers.Like("session-token"),
				"expiresAt": matchers.Term("2030-01-01T00:00:00Z", `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z$`),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client, err := newMarketplaceClient(config)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		categories := client.RegisterCategories(ctx, pacttest.ProviderID, []int64{pacttest.CategoryID})
		if !categories.IsConfirmed() {
			return fmt.Errorf("register categories: %s %s", categories.Kind, categories.Reason)
		}

		created := client.CreateService(ctx, pacttest.ProviderID, marketplace.ServiceRequest{
			CategoryID: pacttest.CategoryID,
			Title:      "Deep cleaning",
			Active:     true,
		})
		if !created.IsConfirmed() || created.Value.ID != pacttest.ServiceID {
			return fmt.Errorf("create service: %+v", created)
		}

		rejected := client.CreateService(ctx, pacttest.ProviderID, marketplace.ServiceRequest{
			CategoryID: pacttest.UnknownCategoryID,
			Title:      "Ghost service",
			Active:     true,
		})
		if !rejected.IsFailed() || rejected.Status != http.StatusUnprocessableEntity {
			return fmt.Errorf("expected failed outcome with 422, got %+v", rejected)
		}

		schedules := client.CreateServiceSchedules(ctx, pacttest.ServiceID, []marketplace.ScheduleSlot{
			{DayOfWeek: "MONDAY", StartTime: "09:00", EndTime: "17:00"},
		})
		if !schedules.IsConfirmed() || len(schedules.Value.Results) != 1 || !schedules.Value.Results[0].Created {
			return fmt.Errorf("create schedules: %+v", schedules)
		}

		session := client.EstablishSession(ctx, marketplace.SessionRequest{ProviderID: pacttest.ProviderID, Email: pacttest.ProviderEmail})
		if !session.IsConfirmed() || session.Value.Token == "" {
			return fmt.Errorf("establish session: %+v", session)
		}
		return nil
	})
	require.NoError(t, err)
}

func newMarketplaceClient(config pactconsumer.MockServerConfig) (*marketplace.Client, error) {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	httpClient := &http.Client{
		Transport: &http.Transport{TLSClientConfig: config.TLSConfig},
		Timeout:   10 * time.Second,
	}
	return marketplace.NewClient(fmt.Sprintf("http://%s:%d", host, config.Port), marketplace.WithHTTPClient(httpClient))
}
