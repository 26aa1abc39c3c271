package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestAutofillError_Error(t *testing.T) {
	err := &AutofillError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "profile not found",
	}

	expected := "NOT_FOUND: profile not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("id is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "id is required" {
		t.Errorf("Message = %q, want %q", err.Message, "id is required")
	}
}

func TestNewInvalidProfile(t *testing.T) {
	problems := []string{"name is required", "email is not a valid email address"}
	err := NewInvalidProfile(problems)

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if got, ok := err.Details["problems"].([]string); !ok || len(got) != 2 {
		t.Errorf("Details[problems] = %v, want %v", err.Details["problems"], problems)
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("lx1abc")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["id"] != "lx1abc" {
		t.Errorf("Details[id] = %v, want %q", err.Details["id"], "lx1abc")
	}
}

func TestNewFileNotFound(t *testing.T) {
	err := NewFileNotFound("/tmp/missing.json")

	if err.Code != ErrFileNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrFileNotFound)
	}
	if err.Details["path"] != "/tmp/missing.json" {
		t.Errorf("Details[path] = %v, want %q", err.Details["path"], "/tmp/missing.json")
	}
}

func TestNewImportFailed(t *testing.T) {
	err := NewImportFailed()

	if err.Code != ErrImportFailed {
		t.Errorf("Code = %q, want %q", err.Code, ErrImportFailed)
	}
	if err.Status != 422 {
		t.Errorf("Status = %d, want 422", err.Status)
	}
	if err.Message != MsgImport {
		t.Errorf("Message = %q, want %q", err.Message, MsgImport)
	}
}

func TestNewPersistence(t *testing.T) {
	cause := stderrors.New("quota exceeded")
	err := NewPersistence(MsgSaveProfile, cause)

	if err.Code != ErrPersistence {
		t.Errorf("Code = %q, want %q", err.Code, ErrPersistence)
	}
	if err.Status != 507 {
		t.Errorf("Status = %d, want 507", err.Status)
	}
	if err.Message != MsgSaveProfile {
		t.Errorf("Message = %q, want %q", err.Message, MsgSaveProfile)
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestNewInternal(t *testing.T) {
	t.Run("with error", func(t *testing.T) {
		originalErr := fmt.Errorf("database connection failed")
		err := NewInternal(originalErr)

		if err.Code != ErrInternal {
			t.Errorf("Code = %q, want %q", err.Code, ErrInternal)
		}
		if err.Status != 500 {
			t.Errorf("Status = %d, want 500", err.Status)
		}
		if err.Message != "an internal error occurred" {
			t.Errorf("Message = %q, want %q", err.Message, "an internal error occurred")
		}
		if err.Details["internal_error"] != "database connection failed" {
			t.Errorf("Details[internal_error] = %q, want %q", err.Details["internal_error"], "database connection failed")
		}
	})

	t.Run("with nil", func(t *testing.T) {
		err := NewInternal(nil)

		if err.Message != "an internal error occurred" {
			t.Errorf("Message = %q, want %q", err.Message, "an internal error occurred")
		}
		if err.Details == nil {
			t.Error("Details should not be nil")
		}
	})
}

func TestIs(t *testing.T) {
	t.Run("matching code", func(t *testing.T) {
		err := NewNotFound("test")
		if !Is(err, ErrNotFound) {
			t.Error("Is() = false, want true")
		}
	})

	t.Run("non-matching code", func(t *testing.T) {
		err := NewNotFound("test")
		if Is(err, ErrPersistence) {
			t.Error("Is() = true, want false")
		}
	})

	t.Run("non-AutofillError", func(t *testing.T) {
		err := fmt.Errorf("plain error")
		if Is(err, ErrNotFound) {
			t.Error("Is() = true, want false for plain error")
		}
	})

	t.Run("wrapped AutofillError", func(t *testing.T) {
		inner := NewPersistence(MsgSaveSettings, nil)
		wrapped := fmt.Errorf("settings: %w", inner)
		if !Is(wrapped, ErrPersistence) {
			t.Error("Is() = false, want true for wrapped AutofillError")
		}
		if Is(wrapped, ErrNotFound) {
			t.Error("Is() = true, want false for wrong code on wrapped AutofillError")
		}
	})
}
