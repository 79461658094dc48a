// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package validation

import (
	"strings"
	"testing"
)

type feedbackRequest struct {
	RecommendationID string   `validate:"required"`
	Action           string   `validate:"required,oneof=accepted completed dismissed"`
	Rating           *float64 `validate:"omitempty,gte=0,lte=1"`
	Note             string   `validate:"max=10"`
}

func ptr(f float64) *float64 { return &f }

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		req       feedbackRequest
		wantNil   bool
		wantField string
		wantMsg   string
	}{
		{
			name:    "valid without rating",
			req:     feedbackRequest{RecommendationID: "r1", Action: "accepted"},
			wantNil: true,
		},
		{
			name:    "valid with rating",
			req:     feedbackRequest{RecommendationID: "r1", Action: "completed", Rating: ptr(0.7)},
			wantNil: true,
		},
		{
			name:      "missing id",
			req:       feedbackRequest{Action: "accepted"},
			wantField: "RecommendationID",
			wantMsg:   "RecommendationID is required",
		},
		{
			name:      "unknown action",
			req:       feedbackRequest{RecommendationID: "r1", Action: "liked"},
			wantField: "Action",
			wantMsg:   "Action must be one of: accepted completed dismissed",
		},
		{
			name:      "rating above one",
			req:       feedbackRequest{RecommendationID: "r1", Action: "accepted", Rating: ptr(1.5)},
			wantField: "Rating",
			wantMsg:   "Rating must be less than or equal to 1",
		},
		{
			name:      "note too long",
			req:       feedbackRequest{RecommendationID: "r1", Action: "accepted", Note: "far too long a note"},
			wantField: "Note",
			wantMsg:   "Note must be at most 10 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.req)
			if tt.wantNil {
				if err != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			if len(err.Errors()) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(err.Errors()), err)
			}
			fe := err.Errors()[0]
			if fe.Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", fe.Field(), tt.wantField)
			}
			if fe.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", fe.Error(), tt.wantMsg)
			}
		})
	}
}

func TestRequestValidationError_ToAPIError(t *testing.T) {
	t.Run("single field", func(t *testing.T) {
		err := ValidateStruct(&feedbackRequest{Action: "accepted"})
		apiErr := err.ToAPIError()

		if apiErr.Code != "VALIDATION_ERROR" {
			t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
		}
		if apiErr.Details["field"] != "RecommendationID" {
			t.Errorf("Details[field] = %v, want RecommendationID", apiErr.Details["field"])
		}
	})

	t.Run("multiple fields", func(t *testing.T) {
		err := ValidateStruct(&feedbackRequest{})
		apiErr := err.ToAPIError()

		if !strings.Contains(apiErr.Message, "RecommendationID: ") || !strings.Contains(apiErr.Message, "Action: ") {
			t.Errorf("Message = %q, want both fields listed", apiErr.Message)
		}
		fields, ok := apiErr.Details["fields"].([]map[string]interface{})
		if !ok || len(fields) != 2 {
			t.Errorf("Details[fields] = %v, want 2 entries", apiErr.Details["fields"])
		}
	})
}

func TestGetValidator_Singleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same instance")
	}
}
