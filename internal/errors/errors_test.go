package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil error", err: nil, want: ""},
		{name: "plain error", err: stderrors.New("boom"), want: "Error: boom"},
		{
			name: "coded error",
			err:  New(CodeFutureDate, "date %s is in the future", "2099-01-01"),
			want: "Error [FUTURE_DATE]: date 2099-01-01 is in the future",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.err); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCodeOfWrapped(t *testing.T) {
	base := New(CodeRetroEditRequired, "no grant")
	wrapped := fmt.Errorf("submission rejected: %w", base)

	if got := CodeOf(wrapped); got != CodeRetroEditRequired {
		t.Errorf("CodeOf() = %s, want %s", got, CodeRetroEditRequired)
	}
	if got := CodeOf(stderrors.New("plain")); got != CodeUnknown {
		t.Errorf("CodeOf(plain) = %s, want %s", got, CodeUnknown)
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(CodeTxFailed, nil, "ignored"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestRetryable(t *testing.T) {
	cause := stderrors.New("database is locked")
	err := Retryable(Wrap(CodeTxFailed, cause, "failed to persist submission"))

	if !IsRetryable(err) {
		t.Error("IsRetryable() = false, want true")
	}
	if !stderrors.Is(err, cause) {
		t.Error("retryable error does not unwrap to its cause")
	}
	if got := CodeOf(err); got != CodeTxFailed {
		t.Errorf("CodeOf() = %s, want %s", got, CodeTxFailed)
	}
	if IsRetryable(cause) {
		t.Error("IsRetryable(cause) = true, want false")
	}
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
}
