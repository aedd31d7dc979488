package submit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"google.golang.org/api/option"
)

func TestSheetsQueueAppend(t *testing.T) {
	var got struct {
		Values [][]string `json:"values"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if !strings.Contains(r.URL.Path, "/spreadsheets/sheet-123/values/") || !strings.HasSuffix(r.URL.Path, ":append") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if v := r.URL.Query().Get("valueInputOption"); v != "USER_ENTERED" {
			t.Errorf("valueInputOption = %q", v)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-123"}`))
	}))
	defer srv.Close()

	q, err := NewSheetsQueue(context.Background(), SheetsOptions{SpreadsheetID: "sheet-123"},
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
		option.WithoutAuthentication())
	if err != nil {
		t.Fatalf("NewSheetsQueue: %v", err)
	}
	e := NewEntry(Draft{Name: "Acme", Category: "networks"}, time.Now())
	if err := q.Append(context.Background(), e); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if len(got.Values) != 1 || len(got.Values[0]) != len(RowHeader) || got.Values[0][0] != e.ID {
		t.Errorf("appended values = %v", got.Values)
	}
}

func TestSheetsQueueError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"denied"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	q, err := NewSheetsQueue(context.Background(), SheetsOptions{SpreadsheetID: "sheet-123"},
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
		option.WithoutAuthentication())
	if err != nil {
		t.Fatal(err)
	}
	if err := q.Append(context.Background(), Entry{ID: "sub-x"}); err == nil {
		t.Error("expected error on 403")
	}
}

func TestSheetsOptions(t *testing.T) {
	if (SheetsOptions{SpreadsheetID: "x", Email: "a@b"}).Configured() {
		t.Error("Configured() without private key")
	}
	if got := UnescapePrivateKey(`-----BEGIN-----\nABC\n-----END-----`); got != "-----BEGIN-----\nABC\n-----END-----" {
		t.Errorf("UnescapePrivateKey = %q", got)
	}
	if _, err := NewSheetsQueue(context.Background(), SheetsOptions{}); err == nil {
		t.Error("missing spreadsheet id accepted")
	}
}
