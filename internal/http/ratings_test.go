package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func attachTourParam(r *http.Request, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("tourID", value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestPatchRequestDecode(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantSet  bool
		wantNull bool
		wantVal  int
	}{
		{"omitted", `{"customerId":1}`, false, false, 0},
		{"null", `{"customerId":1,"score":null}`, true, true, 0},
		{"value", `{"customerId":1,"score":4}`, true, false, 4},
		{"zero value", `{"customerId":1,"score":0}`, true, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req ratingPatchRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if req.Score.set != tt.wantSet || req.Score.null != tt.wantNull || req.Score.value != tt.wantVal {
				t.Fatalf("score optional = %+v, want set=%v null=%v value=%v",
					req.Score, tt.wantSet, tt.wantNull, tt.wantVal)
			}
		})
	}
}

func TestBuildRatingPatch(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantDetail  string
		wantScore   *int
		wantComment *string
		wantClear   bool
	}{
		{"score only", `{"customerId":1,"score":4}`, "", intPtr(4), nil, false},
		{"comment only", `{"customerId":1,"comment":"nice"}`, "", nil, strPtr("nice"), false},
		{"score and comment", `{"customerId":1,"score":2,"comment":"meh"}`, "", intPtr(2), strPtr("meh"), false},
		{"null comment clears", `{"customerId":1,"comment":null}`, "", nil, nil, true},
		{"blank comment clears", `{"customerId":1,"comment":"   "}`, "", nil, nil, true},
		{"null score rejected", `{"customerId":1,"score":null}`, "score", nil, nil, false},
		{"score above range", `{"customerId":1,"score":6}`, "score", nil, nil, false},
		{"score below range", `{"customerId":1,"score":-1}`, "score", nil, nil, false},
		{"empty patch", `{"customerId":1}`, "", nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req ratingPatchRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			patch, details := buildRatingPatch(req)
			if tt.wantDetail != "" {
				if details == nil {
					t.Fatalf("expected a violation on %q, got patch %+v", tt.wantDetail, patch)
				}
				if _, ok := details[tt.wantDetail]; !ok {
					t.Fatalf("details = %+v, want key %q", details, tt.wantDetail)
				}
				return
			}
			if details != nil {
				t.Fatalf("unexpected violation: %+v", details)
			}

			if (patch.Score == nil) != (tt.wantScore == nil) {
				t.Fatalf("patch score = %v, want %v", patch.Score, tt.wantScore)
			}
			if patch.Score != nil && *patch.Score != *tt.wantScore {
				t.Fatalf("patch score = %d, want %d", *patch.Score, *tt.wantScore)
			}
			if (patch.Comment == nil) != (tt.wantComment == nil) {
				t.Fatalf("patch comment = %v, want %v", patch.Comment, tt.wantComment)
			}
			if patch.Comment != nil && *patch.Comment != *tt.wantComment {
				t.Fatalf("patch comment = %q, want %q", *patch.Comment, *tt.wantComment)
			}
			if patch.ClearComment != tt.wantClear {
				t.Fatalf("clear comment = %v, want %v", patch.ClearComment, tt.wantClear)
			}
			if tt.name == "empty patch" && !patch.IsZero() {
				t.Fatalf("empty body should produce a zero patch: %+v", patch)
			}
		})
	}
}

func TestValidateRatingRequest(t *testing.T) {
	tests := []struct {
		name      string
		req       ratingRequest
		wantField string
	}{
		{"valid", ratingRequest{CustomerID: intPtr(1000), Score: intPtr(3)}, ""},
		{"score zero valid", ratingRequest{CustomerID: intPtr(1000), Score: intPtr(0)}, ""},
		{"missing score", ratingRequest{CustomerID: intPtr(1000)}, "score"},
		{"score above bound", ratingRequest{CustomerID: intPtr(1000), Score: intPtr(6)}, "score"},
		{"score below bound", ratingRequest{CustomerID: intPtr(1000), Score: intPtr(-1)}, "score"},
		{"missing customer", ratingRequest{Score: intPtr(3)}, "customerId"},
		{"zero customer", ratingRequest{CustomerID: intPtr(0), Score: intPtr(3)}, "customerId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details, ok := validateStruct(tt.req)
			if tt.wantField == "" {
				if !ok {
					t.Fatalf("validateStruct rejected a valid request: %+v", details)
				}
				return
			}
			if ok {
				t.Fatalf("expected a violation on %q", tt.wantField)
			}
			if _, present := details[tt.wantField]; !present {
				t.Fatalf("details = %+v, want key %q", details, tt.wantField)
			}
		})
	}
}

func TestScoreQueryParam(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    int
		wantErr bool
	}{
		{"missing", "", 0, true},
		{"blank", "score=", 0, true},
		{"not a number", "score=abc", 0, true},
		{"below range", "score=-1", 0, true},
		{"above range", "score=6", 0, true},
		{"lower bound", "score=0", 0, false},
		{"upper bound", "score=5", 5, false},
		{"padded", "score=%203%20", 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/tours/1/ratings/batch?"+tt.query, nil)
			got, err := scoreQueryParam(req)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error, got %d", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("score = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTourIDParam(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{"numeric", "999", 999, false},
		{"not numeric", "abc", 0, true},
		{"zero", "0", 0, true},
		{"negative", "-3", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/tours/"+tt.raw+"/ratings", nil)
			req = attachTourParam(req, tt.raw)
			got, err := tourIDParam(req)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error, got %d", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("tour id = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNormalizeStringPtr(t *testing.T) {
	tests := []struct {
		name  string
		input *string
		want  *string
	}{
		{"nil", nil, nil},
		{"empty", strPtr(""), nil},
		{"whitespace", strPtr("   "), nil},
		{"padded", strPtr("  trimmed  "), strPtr("trimmed")},
		{"plain", strPtr("plain"), strPtr("plain")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeStringPtr(tt.input)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("normalizeStringPtr = %v, want %v", got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Fatalf("normalizeStringPtr = %q, want %q", *got, *tt.want)
			}
		})
	}
}
