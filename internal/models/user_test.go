package models

import "testing"

func TestNextOnboardingStep(t *testing.T) {
	tests := []struct {
		from OnboardingStep
		want OnboardingStep
	}{
		{StepBasic, StepContact},
		{StepContact, StepDetails},
		{StepDetails, StepDone},
		{StepDone, StepDone},
	}
	for _, tt := range tests {
		if got := NextOnboardingStep(tt.from); got != tt.want {
			t.Errorf("NextOnboardingStep(%s) = %s, want %s", tt.from, got, tt.want)
		}
	}
}

func TestFullName(t *testing.T) {
	tests := []struct {
		name  string
		first string
		last  string
		want  string
	}{
		{"both names", "Ada", "Lovelace", "Ada Lovelace"},
		{"first only", "Ada", "", "Ada"},
		{"last only", "", "Lovelace", "Lovelace"},
		{"empty", "", "", "?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := User{FirstName: tt.first, LastName: tt.last}
			if got := u.FullName(); got != tt.want {
				t.Errorf("FullName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	var u User
	if err := u.SetPassword("correct horse battery staple"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if u.Password == "correct horse battery staple" {
		t.Fatal("password stored in plain text")
	}
	if !u.CheckPassword("correct horse battery staple") {
		t.Error("CheckPassword rejected the right password")
	}
	if u.CheckPassword("wrong") {
		t.Error("CheckPassword accepted a wrong password")
	}
}
