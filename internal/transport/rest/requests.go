package rest

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jinzhu/now"
	"max.ks1230/expenses-api/internal/entity/expense"
	"max.ks1230/expenses-api/internal/model/customerr"
	"max.ks1230/expenses-api/internal/model/expenses"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 72
	maxBodyBytes      = 1 << 20
)

var utcParser = &now.Config{TimeLocation: time.UTC}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createExpenseRequest struct {
	Amount      *float64 `json:"amount"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	Date        *string  `json:"date"`
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return customerr.Validation("body", "invalid JSON")
	}
	return nil
}

func decodeCredentials(r *http.Request, register bool) (credentialsRequest, error) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		return req, err
	}
	req.Email = strings.TrimSpace(req.Email)
	if !validEmail(req.Email) {
		return req, customerr.Validation("email", "not a valid email address")
	}
	if req.Password == "" {
		return req, customerr.Validation("password", "field required")
	}
	if register && len(req.Password) < minPasswordLength {
		return req, customerr.Validation("password", "must be at least 6 characters")
	}
	if register && len(req.Password) > maxPasswordLength {
		return req, customerr.Validation("password", "must be at most 72 bytes")
	}
	return req, nil
}

func decodeNewExpense(r *http.Request) (expenses.NewExpense, error) {
	var req createExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		return expenses.NewExpense{}, err
	}

	if req.Amount == nil {
		return expenses.NewExpense{}, customerr.Validation("amount", "field required")
	}
	if err := validateAmount(*req.Amount); err != nil {
		return expenses.NewExpense{}, err
	}
	if req.Category == nil {
		return expenses.NewExpense{}, customerr.Validation("category", "field required")
	}
	category, err := parseCategory(*req.Category)
	if err != nil {
		return expenses.NewExpense{}, err
	}
	if req.Date == nil {
		return expenses.NewExpense{}, customerr.Validation("date", "field required")
	}
	date, err := parseDate("date", *req.Date)
	if err != nil {
		return expenses.NewExpense{}, err
	}

	return expenses.NewExpense{
		Amount:      *req.Amount,
		Category:    category,
		Description: req.Description,
		Date:        date,
	}, nil
}

// decodePatch reads a partial update. Absent keys are left alone; an explicit
// null clears the description and is rejected for every other field.
func decodePatch(r *http.Request) (expense.Patch, error) {
	var raw map[string]json.RawMessage
	if err := decodeJSON(r, &raw); err != nil {
		return expense.Patch{}, err
	}

	var patch expense.Patch
	if v, ok := raw["amount"]; ok {
		var amount *float64
		if err := json.Unmarshal(v, &amount); err != nil || amount == nil {
			return expense.Patch{}, customerr.Validation("amount", "must be a number")
		}
		if err := validateAmount(*amount); err != nil {
			return expense.Patch{}, err
		}
		patch.Amount = amount
	}
	if v, ok := raw["category"]; ok {
		var s *string
		if err := json.Unmarshal(v, &s); err != nil || s == nil {
			return expense.Patch{}, customerr.Validation("category", "must be a string")
		}
		category, err := parseCategory(*s)
		if err != nil {
			return expense.Patch{}, err
		}
		patch.Category = &category
	}
	if v, ok := raw["date"]; ok {
		var s *string
		if err := json.Unmarshal(v, &s); err != nil || s == nil {
			return expense.Patch{}, customerr.Validation("date", "must be a string")
		}
		date, err := parseDate("date", *s)
		if err != nil {
			return expense.Patch{}, err
		}
		patch.Date = &date
	}
	if v, ok := raw["description"]; ok {
		var s *string
		if err := json.Unmarshal(v, &s); err != nil {
			return expense.Patch{}, customerr.Validation("description", "must be a string or null")
		}
		patch.Description = s
		patch.SetDescription = true
	}
	return patch, nil
}

// decodeListQuery reads rango, start_date, end_date and category.
func decodeListQuery(owner uuid.UUID, values url.Values) (expenses.ListQuery, error) {
	start, err := optionalDate("start_date", values.Get("start_date"))
	if err != nil {
		return expenses.ListQuery{}, err
	}
	end, err := optionalDate("end_date", values.Get("end_date"))
	if err != nil {
		return expenses.ListQuery{}, err
	}
	q := expenses.ListQuery{
		OwnerID: owner,
		Range:   expenses.ParseRange(values.Get("rango"), start, end),
	}
	if raw := values.Get("category"); raw != "" {
		category, err := parseCategory(raw)
		if err != nil {
			return expenses.ListQuery{}, err
		}
		q.Category = &category
	}
	return q, nil
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, customerr.ErrInvalidID
	}
	return id, nil
}

// validEmail wants a bare addr-spec with a dotted domain.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	at := strings.LastIndex(s, "@")
	domain := s[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}

func validateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return customerr.Validation("amount", "must be greater than 0")
	}
	return nil
}

func parseCategory(s string) (expense.Category, error) {
	category, ok := expense.ParseCategory(s)
	if !ok {
		return "", customerr.Validation("category", "unknown category "+s)
	}
	return category, nil
}

func optionalDate(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseDate(field, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseDate accepts RFC 3339 and the looser layouts understood by now. Values
// without a zone are read as UTC.
func parseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := utcParser.Parse(s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, customerr.Validation(field, "invalid datetime "+s)
}
