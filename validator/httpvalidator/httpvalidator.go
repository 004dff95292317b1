package httpvalidator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/zlnvch/tracereport/models"
	"github.com/zlnvch/tracereport/validator"
)

const (
	onsetPath = "/v1/onset"
	tokenPath = "/v1/authorize"

	onsetDateLayout = "2006-01-02"
)

type HTTPCodeValidator struct {
	client  *http.Client
	baseURL string
}

func NewHTTPCodeValidator(client *http.Client, baseURL string) *HTTPCodeValidator {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPCodeValidator{client: client, baseURL: baseURL}
}

type codeRequest struct {
	AuthorizationCode string `json:"authorizationCode"`
	Fake              string `json:"fake"`
}

type onsetResponse struct {
	Onset string `json:"onset"`
}

type tokenResponse struct {
	AccessToken        string `json:"accessToken"`
	CheckInAccessToken string `json:"checkInAccessToken"`
}

func (v *HTTPCodeValidator) RequestOnsetDate(ctx context.Context, code string, isFake bool) (models.OnsetDate, error) {
	var resp onsetResponse
	serverTime, err := v.post(ctx, onsetPath, code, isFake, &resp)
	if err != nil {
		return models.OnsetDate{}, err
	}

	onset, err := time.Parse(onsetDateLayout, resp.Onset)
	if err != nil {
		return models.OnsetDate{}, &validator.ValidationError{Cause: fmt.Errorf("malformed onset date %q: %w", resp.Onset, err)}
	}

	return models.OnsetDate{Date: onset, ServerTime: serverTime}, nil
}

func (v *HTTPCodeValidator) RequestTokens(ctx context.Context, code string, isFake bool) (models.TokenWrapper, error) {
	var resp tokenResponse
	if _, err := v.post(ctx, tokenPath, code, isFake, &resp); err != nil {
		return models.TokenWrapper{}, err
	}

	enToken, err := parseENToken(resp.AccessToken)
	if err != nil {
		return models.TokenWrapper{}, &validator.ValidationError{Cause: err}
	}
	checkInToken, err := parseBearerToken(resp.CheckInAccessToken)
	if err != nil {
		return models.TokenWrapper{}, &validator.ValidationError{Cause: err}
	}

	return models.TokenWrapper{
		Code:         code,
		ENToken:      enToken,
		CheckInToken: checkInToken,
	}, nil
}

func (v *HTTPCodeValidator) post(ctx context.Context, path string, code string, isFake bool, out any) (time.Time, error) {
	fake := "0"
	if isFake {
		fake = "1"
	}
	body, err := json.Marshal(codeRequest{AuthorizationCode: code, Fake: fake})
	if err != nil {
		return time.Time{}, &validator.ValidationError{Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return time.Time{}, &validator.ValidationError{Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return time.Time{}, &validator.ValidationError{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return time.Time{}, &validator.ValidationError{StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return time.Time{}, &validator.ValidationError{Cause: err}
	}

	serverTime := time.Now()
	if date := resp.Header.Get("Date"); date != "" {
		if parsed, err := http.ParseTime(date); err == nil {
			serverTime = parsed
		}
	}
	return serverTime, nil
}

// parseENToken decodes the EN access token without verifying its
// signature; the backend already authenticated the code, the claims are
// only needed locally for the onset date and expiry.
func parseENToken(tokenString string) (models.ENToken, error) {
	token, err := parseBearerToken(tokenString)
	if err != nil {
		return models.ENToken{}, err
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return models.ENToken{}, err
	}

	onsetClaim, ok := claims["onset"].(string)
	if !ok {
		return models.ENToken{}, errors.New("access token missing onset claim")
	}
	onset, err := time.Parse(onsetDateLayout, onsetClaim)
	if err != nil {
		return models.ENToken{}, fmt.Errorf("malformed onset claim %q: %w", onsetClaim, err)
	}

	return models.ENToken{Onset: onset, Token: token}, nil
}

func parseBearerToken(tokenString string) (models.BearerToken, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return models.BearerToken{}, fmt.Errorf("malformed bearer token: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return models.BearerToken{}, errors.New("bearer token missing exp claim")
	}

	return models.BearerToken{AccessToken: tokenString, ExpiresAt: exp.Time}, nil
}
