package submit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientSubmit(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   Result
	}{
		{"success", 200, `{"success":true,"id":"sub-1"}`, Result{Success: true, ID: "sub-1"}},
		{"rejected", 400, `{"error":"Name is required"}`, Result{Error: "Name is required"}},
		{"server error without body", 502, `bad gateway`, Result{Error: MsgFailed}},
		{"200 without success", 200, `{}`, Result{Error: MsgFailed}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != SubmitPath || r.Method != http.MethodPost {
					t.Errorf("%s %s", r.Method, r.URL.Path)
				}
				var d Draft
				if err := json.NewDecoder(r.Body).Decode(&d); err != nil || d.Name != "Acme" {
					t.Errorf("draft = %+v, %v", d, err)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			got := NewClient(srv.URL+"/").Submit(context.Background(), Draft{Name: "Acme", Category: "networks"})
			if got != tt.want {
				t.Errorf("Submit() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestClientNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	got := NewClient(url).Submit(context.Background(), Draft{Name: "Acme"})
	if got.Success || got.Error != MsgNetworkError {
		t.Errorf("Submit() = %+v", got)
	}
}
