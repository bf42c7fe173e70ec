package model

import "testing"

func TestQuestionTypeRules(t *testing.T) {
	tests := []struct {
		qtype       QuestionType
		valid       bool
		hasOptions  bool
		multiSelect bool
	}{
		{TypeText, true, false, false},
		{TypeMultipleChoice, true, true, false},
		{TypeRating, true, true, false},
		{TypeCheckbox, true, true, true},
		{TypeYesNo, true, true, false},
		{"essay", false, false, false},
		{"", false, false, false},
	}

	for _, tt := range tests {
		if got := tt.qtype.Valid(); got != tt.valid {
			t.Errorf("%q.Valid() = %v, want %v", tt.qtype, got, tt.valid)
		}
		if got := tt.qtype.HasOptions(); got != tt.hasOptions {
			t.Errorf("%q.HasOptions() = %v, want %v", tt.qtype, got, tt.hasOptions)
		}
		if got := tt.qtype.MultiSelect(); got != tt.multiSelect {
			t.Errorf("%q.MultiSelect() = %v, want %v", tt.qtype, got, tt.multiSelect)
		}
	}
}

func TestCommentOnlyOnClosedTypes(t *testing.T) {
	if TypeText.AllowsComment() {
		t.Error("text questions should not take comments")
	}
	for _, qtype := range []QuestionType{TypeMultipleChoice, TypeRating, TypeCheckbox, TypeYesNo} {
		if !qtype.AllowsComment() {
			t.Errorf("%q should take comments", qtype)
		}
	}
}
