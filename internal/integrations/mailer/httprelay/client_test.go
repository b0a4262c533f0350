package httprelay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BearBump/CargoFlow/internal/integrations/mailer"
	"github.com/stretchr/testify/require"
)

func TestClient_Send_OK(t *testing.T) {
	var got reqBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/messages", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	err := c.Send(context.Background(), mailer.Message{
		To: []string{"ops@x.com"}, Subject: "Delivery Created - #3", Body: "Recipient: Ali",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"ops@x.com"}, got.To)
	require.Equal(t, "Delivery Created - #3", got.Subject)
	require.False(t, got.HTML)
}

func TestClient_Send_429(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := New(srv.URL, "").Send(context.Background(), mailer.Message{To: []string{"a@x.com"}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "429")
}

func TestClient_Send_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := New(srv.URL, "").Send(context.Background(), mailer.Message{To: []string{"a@x.com"}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "502")
}
