package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	err := NewConfigError("band_width", "signature_length 10 is not a multiple of band_width 3")

	expectedMsg := "invalid configuration for 'band_width': signature_length 10 is not a multiple of band_width 3"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	if !errors.Is(err, ErrInvalidConfig) {
		t.Error("Expected error to match ErrInvalidConfig sentinel")
	}
	if errors.Is(err, ErrDocumentTooShort) {
		t.Error("Error should not match ErrDocumentTooShort")
	}

	noField := NewConfigError("", "empty")
	if noField.Error() != "invalid configuration: empty" {
		t.Errorf("unexpected message %q", noField.Error())
	}
}

func TestDocumentTooShortError(t *testing.T) {
	t.Run("document shorter than shingle", func(t *testing.T) {
		err := NewDocumentTooShortError(4, 2, 3, ReasonShingle)
		expectedMsg := "document 4 too short: 2 characters, need at least 3 to form a shingle"
		if err.Error() != expectedMsg {
			t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
		}
		if !errors.Is(err, ErrDocumentTooShort) {
			t.Error("Expected error to match ErrDocumentTooShort sentinel")
		}
	})

	t.Run("query with too few shingles for a band", func(t *testing.T) {
		err := NewDocumentTooShortError(QueryDocID, 1, 2, ReasonBand)
		expectedMsg := "query too short: 1 distinct shingles, need at least 2 for one band"
		if err.Error() != expectedMsg {
			t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
		}
	})

	t.Run("wrapped error keeps details", func(t *testing.T) {
		wrapped := fmt.Errorf("signature for document 7: %w", NewDocumentTooShortError(7, 1, 3, ReasonShingle))

		var tooShort *DocumentTooShortError
		if !errors.As(wrapped, &tooShort) {
			t.Fatal("Expected to unwrap DocumentTooShortError")
		}
		if tooShort.DocID != 7 || tooShort.Required != 3 {
			t.Errorf("unexpected details: %+v", tooShort)
		}
	})
}

func TestIndexNotFoundError(t *testing.T) {
	indexName := "test-index"
	err := NewIndexNotFoundError(indexName)

	expectedMsg := "index named 'test-index' not found"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	if !errors.Is(err, ErrIndexNotFound) {
		t.Error("Expected error to match ErrIndexNotFound sentinel")
	}

	if errors.Is(err, ErrDocumentNotFound) {
		t.Error("Error should not match ErrDocumentNotFound")
	}
}

func TestIndexAlreadyExistsError(t *testing.T) {
	err := NewIndexAlreadyExistsError("existing-index")

	expectedMsg := "index named 'existing-index' already exists"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	if !errors.Is(err, ErrIndexAlreadyExists) {
		t.Error("Expected error to match ErrIndexAlreadyExists sentinel")
	}
}

func TestDocumentNotFoundError(t *testing.T) {
	err := NewDocumentNotFoundError(123)

	expectedMsg := "document with ID 123 not found"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	err2 := NewDocumentNotFoundError(123, "test-index")

	expectedMsg2 := "document with ID 123 not found in index 'test-index'"
	if err2.Error() != expectedMsg2 {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg2, err2.Error())
	}

	if !errors.Is(err, ErrDocumentNotFound) {
		t.Error("Expected error to match ErrDocumentNotFound sentinel")
	}
	if !errors.Is(err2, ErrDocumentNotFound) {
		t.Error("Expected error with index to match ErrDocumentNotFound sentinel")
	}
}

func TestJobNotFoundError(t *testing.T) {
	err := NewJobNotFoundError("job-456")

	expectedMsg := "job with ID 'job-456' not found"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	if !errors.Is(err, ErrJobNotFound) {
		t.Error("Expected error to match ErrJobNotFound sentinel")
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("name", "cannot be empty")

	expectedMsg := "validation error for field 'name': cannot be empty"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	err2 := NewValidationError("", "cannot be empty")

	expectedMsg2 := "validation error: cannot be empty"
	if err2.Error() != expectedMsg2 {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg2, err2.Error())
	}

	if !errors.Is(err, ErrInvalidInput) {
		t.Error("Expected error to match ErrInvalidInput sentinel")
	}
}

func TestErrorChaining(t *testing.T) {
	originalErr := NewIndexNotFoundError("test-index")
	wrappedErr := errors.Join(originalErr, errors.New("additional context"))

	if !errors.Is(wrappedErr, ErrIndexNotFound) {
		t.Error("Expected wrapped error to still match ErrIndexNotFound sentinel")
	}

	var indexErr *IndexNotFoundError
	if !errors.As(wrappedErr, &indexErr) {
		t.Error("Expected to be able to unwrap to IndexNotFoundError")
	}

	if indexErr.IndexName != "test-index" {
		t.Errorf("Expected index name 'test-index', got '%s'", indexErr.IndexName)
	}
}
