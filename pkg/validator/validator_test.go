package validator

import "testing"

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"user@example.com", true},
		{"ivan.petrov+work@mail.ru", true},
		{"user@", false},
		{"@example.com", false},
		{"без-почты", false},
	}

	for _, tt := range tests {
		if got := ValidateEmail(tt.email); got != tt.valid {
			t.Errorf("ValidateEmail(%q) = %v, ожидалось %v", tt.email, got, tt.valid)
		}
	}
}

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone string
		valid bool
	}{
		{"+79211234567", true},
		{"8 (921) 123-45-67", true},
		{"123", false},
		{"телефон", false},
	}

	for _, tt := range tests {
		if got := ValidatePhone(tt.phone); got != tt.valid {
			t.Errorf("ValidatePhone(%q) = %v, ожидалось %v", tt.phone, got, tt.valid)
		}
	}
}

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"8 (921) 123-45-67", "+79211234567"},
		{"79211234567", "+79211234567"},
		{"+79211234567", "+79211234567"},
	}

	for _, tt := range tests {
		if got := FormatPhone(tt.in); got != tt.want {
			t.Errorf("FormatPhone(%q) = %q, ожидалось %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ivan", "Ivan"},
		{"ANNA-MARIA", "Anna-Maria"},
		{"john smith", "John Smith"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := FormatName(tt.in); got != tt.want {
			t.Errorf("FormatName(%q) = %q, ожидалось %q", tt.in, got, tt.want)
		}
	}
}
