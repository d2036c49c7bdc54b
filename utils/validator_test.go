package utils

import "testing"

type registerForm struct {
	Name                 string `validate:"required,nameok"`
	Email                string `validate:"required,emailok"`
	Password             string `validate:"required,pwdmin"`
	PasswordConfirmation string `validate:"required,eqfield=Password"`
}

func TestValidateStructOK(t *testing.T) {
	f := registerForm{
		Name:                 "Ana D'Ávila",
		Email:                "ana@orcestra.com.br",
		Password:             "secret1",
		PasswordConfirmation: "secret1",
	}
	if err := ValidateStruct(&f); err != nil {
		t.Fatalf("expected valid form, got %v", err)
	}
}

func TestValidateStructMissingRequired(t *testing.T) {
	f := registerForm{Email: "ana@orcestra.com.br", Password: "secret1", PasswordConfirmation: "secret1"}
	if err := ValidateStruct(&f); err == nil {
		t.Fatal("expected error for missing Name")
	}
}

func TestValidateStructBadEmail(t *testing.T) {
	f := registerForm{Name: "Ana", Email: "not-an-email", Password: "secret1", PasswordConfirmation: "secret1"}
	if err := ValidateStruct(&f); err == nil {
		t.Fatal("expected error for bad email")
	}
}

func TestValidateStructShortPassword(t *testing.T) {
	f := registerForm{Name: "Ana", Email: "a@b.co", Password: "abc", PasswordConfirmation: "abc"}
	if err := ValidateStruct(&f); err == nil {
		t.Fatal("expected error for short password")
	}
}

func TestValidateStructEqField(t *testing.T) {
	f := registerForm{Name: "Ana", Email: "a@b.co", Password: "secret1", PasswordConfirmation: "secret2"}
	if err := ValidateStruct(&f); err == nil {
		t.Fatal("expected error for mismatched confirmation")
	}
}
