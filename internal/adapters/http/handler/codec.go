package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	maxBodyBytes        = 1 << 20
	dateLayout          = "2006-01-02"
	nextPageTokenHeader = "X-Next-Page-Token"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON は未知のフィールドを拒否してボディを読み込みます。
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	return nil
}

// optional は JSON の「未指定」と「null 指定」を区別します。
type optional[T any] struct {
	Set   bool
	Value *T
}

func (o *optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// date は YYYY-MM-DD 形式の日付です。
type date struct {
	time.Time
}

func (d *date) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

func datePtr(d *date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func toDatePtr(t *time.Time) *date {
	if t == nil {
		return nil
	}
	return &date{Time: *t}
}

func optionalDate(o optional[date]) (*time.Time, bool) {
	return datePtr(o.Value), o.Set
}

func optionalTime(o optional[time.Time]) (*time.Time, bool) {
	return o.Value, o.Set
}

func optionalString(o optional[string]) (*string, bool) {
	return o.Value, o.Set
}

func parseDateQuery(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", errInvalidRequest, key)
	}
	return &t, nil
}

func parsePageSize(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("page_size"))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: page_size must be an integer", errInvalidRequest)
	}
	return n, nil
}

func optionalQuery(r *http.Request, key string) *string {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil
	}
	return &raw
}

func setNextPageToken(w http.ResponseWriter, token string) {
	if token != "" {
		w.Header().Set(nextPageTokenHeader, token)
	}
}

// pathID は UUID 形式のパスパラメータを返します。形式が不正な場合は notFound を返します。
func pathID(r *http.Request, notFound error) (string, error) {
	raw := r.PathValue("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", notFound
	}
	return id.String(), nil
}
