package http

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/keyshort/url-shortener/internal/entity"
)

type shortenRequest struct {
	TargetURL  string     `json:"target_url" validate:"omitempty,url"`
	Expiry     *time.Time `json:"expiry"`
	CustomCode *string    `json:"custom_code" validate:"omitempty,max=64"`
	Password   *string    `json:"password"`
}

type updateRequest struct {
	Expiry   *time.Time `json:"expiry"`
	Password *string    `json:"password"`
}

type deleteRequest struct {
	Code string `json:"code"`
}

type bulkShortenRequest struct {
	TargetURLs []string `json:"target_urls" validate:"omitempty,dive,url"`
	Password   *string  `json:"password"`
}

type shortenResponse struct {
	StatusCode int        `json:"status_code"`
	Code       string     `json:"code"`
	Expiry     *time.Time `json:"expiry"`
}

type updateResponse struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code"`
}

type batchItem struct {
	OriginalURL string `json:"original_url"`
	Code        string `json:"code"`
}

type bulkShortenResponse struct {
	StatusCode int         `json:"status_code"`
	Batch      []batchItem `json:"batch"`
}

// urlResponse never carries the password itself.
type urlResponse struct {
	ID             int64      `json:"id"`
	Code           string     `json:"code"`
	OriginalURL    string     `json:"original_url"`
	HasPassword    bool       `json:"has_password"`
	State          string     `json:"state"`
	VisitCount     int64      `json:"visit_count"`
	LastAccessedAt time.Time  `json:"last_accessed_at"`
	CreatedAt      time.Time  `json:"created_at"`
	Expiry         *time.Time `json:"expiry"`
}

func toURLResponse(url *entity.URL, now time.Time) urlResponse {
	return urlResponse{
		ID:             url.ID,
		Code:           url.ShortCode,
		OriginalURL:    url.OriginalURL,
		HasPassword:    url.HasPassword(),
		State:          url.State(now).String(),
		VisitCount:     url.VisitCount,
		LastAccessedAt: url.LastAccessedAt,
		CreatedAt:      url.CreatedAt,
		Expiry:         url.ExpiresAt,
	}
}

type requestLogResponse struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Method    string    `json:"method"`
	URL       string    `json:"url"`
	UserAgent string    `json:"user_agent"`
	IP        string    `json:"ip"`
}

func toRequestLogResponse(entry *entity.RequestLog) requestLogResponse {
	return requestLogResponse{
		ID:        entry.ID,
		Timestamp: entry.Timestamp,
		Method:    entry.Method,
		URL:       entry.URL,
		UserAgent: entry.UserAgent,
		IP:        entry.IP,
	}
}

type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func messageForTag(tag string) string {
	switch tag {
	case "url":
		return "invalid url"
	case "max":
		return "value is too long"
	default:
		return "invalid value"
	}
}

func getValidationErrors(err error) []any {
	var validationErrs []any

	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		for _, e := range errs {
			validationErrs = append(validationErrs, validationError{
				Field:   e.Field(),
				Message: messageForTag(e.Tag()),
			})
		}
	}

	return validationErrs
}
