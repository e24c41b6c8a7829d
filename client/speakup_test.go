package client

import "testing"

func TestValidateSpeakUpDraft(t *testing.T) {
	tests := []struct {
		name       string
		draft      SpeakUpDraft
		wantFields []string
	}{
		{
			name:       "empty draft",
			draft:      NewSpeakUpDraft(),
			wantFields: []string{"message", "typeId"},
		},
		{
			// The unselected sentinel fails a plain save, not just submit.
			name: "save without type",
			draft: SpeakUpDraft{
				TypeID:   TypeUnselected,
				Message:  "something happened",
				ActionBy: SpeakUpActionSave,
			},
			wantFields: []string{"typeId"},
		},
		{
			name: "submit without type",
			draft: SpeakUpDraft{
				TypeID:   TypeUnselected,
				Message:  "something happened",
				ActionBy: SpeakUpActionSubmit,
			},
			wantFields: []string{"typeId"},
		},
		{
			name: "missing message",
			draft: SpeakUpDraft{
				TypeID:   1,
				ActionBy: SpeakUpActionSave,
			},
			wantFields: []string{"message"},
		},
		{
			name: "complete draft",
			draft: SpeakUpDraft{
				TypeID:   1,
				Message:  "something happened",
				ActionBy: SpeakUpActionSubmit,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateSpeakUpDraft(tt.draft)
			if len(errs) != len(tt.wantFields) {
				t.Fatalf("errors = %v, want fields %v", errs, tt.wantFields)
			}
			for _, field := range tt.wantFields {
				if errs[field] == "" {
					t.Errorf("missing %q error in %v", field, errs)
				}
			}
		})
	}
}
