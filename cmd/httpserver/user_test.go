//go:build integration

package httpserver_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/IsaacValiente/Mobility.Payments/internal/domain"
	"github.com/IsaacValiente/Mobility.Payments/internal/integrationtest"
	"github.com/IsaacValiente/Mobility.Payments/pkg/randompkg"
)

func TestAPIKeyGateAPI(t *testing.T) {
	server := integrationtest.SetupServer(t)

	testCases := []struct {
		name      string
		setupKey  func(r *http.Request)
		wantError string
	}{
		{
			name:      "NoAPIKey",
			setupKey:  func(r *http.Request) {},
			wantError: "the API key is missing",
		},
		{
			name: "InvalidAPIKey",
			setupKey: func(r *http.Request) {
				r.Header.Set("X-API-Key", "wrong-key")
			},
			wantError: "invalid API key",
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, "/payments", nil)
			require.NoError(t, err)

			tc.setupKey(req)

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)
			require.Equal(t, http.StatusUnauthorized, recorder.Code)

			var res struct {
				Error string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &res))
			require.Equal(t, tc.wantError, res.Error)
		})
	}
}

func TestRegisterUserAPI(t *testing.T) {
	server := integrationtest.SetupServer(t)

	username := randompkg.Username()

	body := gin.H{
		"username":   username,
		"password":   testPassword,
		"first_name": randompkg.String(6),
		"last_name":  randompkg.String(8),
		"role":       "receiver",
	}

	recorder := doRequest(t, server, http.MethodPost, "/users", "", body)
	require.Equal(t, http.StatusCreated, recorder.Code)

	var res struct {
		AccessToken string   `json:"access_token"`
		Data        userData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &res))

	// Registration does not log the user in.
	require.Empty(t, res.AccessToken)
	require.Equal(t, username, res.Data.User.Username)
	require.Equal(t, domain.RoleReceiver, res.Data.User.Role)
	require.Equal(t, "100.0000", res.Data.User.Balance)

	// The username is taken now.
	recorder = doRequest(t, server, http.MethodPost, "/users", "", body)
	require.Equal(t, http.StatusConflict, recorder.Code)
}

func TestLoginUserAPI(t *testing.T) {
	server := integrationtest.SetupServer(t)

	username := registerUser(t, server, domain.RoleSender)

	testCases := []struct {
		name           string
		requestBody    gin.H
		wantStatusCode int
	}{
		{
			name:           "OK",
			requestBody:    gin.H{"username": username, "password": testPassword},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "WrongPassword",
			requestBody:    gin.H{"username": username, "password": "wrongpass"},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "UnknownUser",
			requestBody:    gin.H{"username": "nonexistent", "password": testPassword},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "MissingPassword",
			requestBody:    gin.H{"username": username},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			recorder := doRequest(t, server, http.MethodPost, "/users/login", "", tc.requestBody)
			require.Equal(t, tc.wantStatusCode, recorder.Code)

			if tc.wantStatusCode != http.StatusOK {
				return
			}

			var res struct {
				AccessToken          string   `json:"access_token"`
				AccessTokenExpiresAt string   `json:"access_token_expires_at"`
				Data                 userData `json:"data"`
			}
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &res))
			require.NotEmpty(t, res.AccessToken)
			require.NotEmpty(t, res.AccessTokenExpiresAt)
			require.Equal(t, username, res.Data.User.Username)
		})
	}
}
