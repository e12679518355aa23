package prompt

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/AlecAivazis/survey/v2/terminal"
)

func TestStringValidator(t *testing.T) {
	validate := stringValidator(func(value string) error {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("Name darf nicht leer sein")
		}
		return nil
	})

	if err := validate("Kunden (Kopie)"); err != nil {
		t.Fatalf("valid answer rejected: %v", err)
	}
	if err := validate("   "); err == nil {
		t.Fatalf("blank answer should be rejected")
	}
	// Survey hands answers as interface{}; anything non-string validates as
	// the empty string rather than panicking.
	if err := validate(42); err == nil {
		t.Fatalf("non-string answer should validate as empty")
	}
}

func TestTranslateSurveyErr(t *testing.T) {
	if got := translateSurveyErr(terminal.InterruptErr); !errors.Is(got, ErrAborted) {
		t.Fatalf("interrupt should map to ErrAborted, got %v", got)
	}

	other := errors.New("kaputt")
	if got := translateSurveyErr(other); got != other {
		t.Fatalf("other errors must pass through, got %v", got)
	}
}
