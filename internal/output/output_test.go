package output

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	oldStdout := Stdout
	defer func() { Stdout = oldStdout }()

	buf := &bytes.Buffer{}
	Stdout = buf
	fn()
	return buf.String()
}

func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	oldStderr := Stderr
	defer func() { Stderr = oldStderr }()

	buf := &bytes.Buffer{}
	Stderr = buf
	fn()
	return buf.String()
}

func TestSuccess(t *testing.T) {
	out := captureStdout(t, func() { Successf("stack %s created", "fotogram-network") })
	if !strings.Contains(out, "stack fotogram-network created") {
		t.Errorf("expected success message, got %q", out)
	}
}

func TestInfo(t *testing.T) {
	out := captureStdout(t, func() { Info("creating stack") })
	if !strings.Contains(out, "creating stack") {
		t.Errorf("expected info message, got %q", out)
	}
}

func TestWarning(t *testing.T) {
	out := captureStdout(t, func() { Warningf("missing output %q", "S3BucketName") })
	if !strings.Contains(out, `missing output "S3BucketName"`) {
		t.Errorf("expected warning message, got %q", out)
	}
}

func TestErrorWritesToStderr(t *testing.T) {
	var stdout string
	stderr := captureStderr(t, func() {
		stdout = captureStdout(t, func() { Errorf("something went wrong") })
	})

	if !strings.Contains(stderr, "something went wrong") {
		t.Errorf("expected stderr to contain the error, got %q", stderr)
	}
	if stdout != "" {
		t.Errorf("expected stdout to stay empty, got %q", stdout)
	}
}

func TestHeader(t *testing.T) {
	out := captureStdout(t, func() { Header("Deploying infrastructure") })
	if !strings.Contains(out, "Deploying infrastructure") || !strings.Contains(out, "━") {
		t.Errorf("expected header with separator, got %q", out)
	}
}

func TestKeyValue(t *testing.T) {
	out := captureStdout(t, func() { KeyValue("Region", "us-east-1") })
	if !strings.Contains(out, "Region") || !strings.Contains(out, "us-east-1") {
		t.Errorf("expected key and value, got %q", out)
	}
	if !strings.HasPrefix(out, "  ") {
		t.Errorf("expected two-space indentation, got %q", out)
	}
}

func TestDetail(t *testing.T) {
	out := captureStdout(t, func() { Detail("URL of the load balancer") })
	if !strings.HasPrefix(out, "    ") {
		t.Errorf("expected four-space indentation, got %q", out)
	}
}

func TestStep(t *testing.T) {
	out := captureStdout(t, func() { Step(1, 4, "provisioning network stack") })
	if !strings.Contains(out, "[1/4]") || !strings.Contains(out, "provisioning network stack") {
		t.Errorf("expected step output, got %q", out)
	}
}

func TestList(t *testing.T) {
	out := captureStdout(t, func() { List([]string{"first", "second"}) })
	if !strings.Contains(out, "first") || !strings.Contains(out, "second") {
		t.Errorf("expected list items, got %q", out)
	}
}

func TestNumberedList(t *testing.T) {
	out := captureStdout(t, func() { NumberedList([]string{"open the URL", "run status"}) })
	if !strings.Contains(out, "1.") || !strings.Contains(out, "2.") {
		t.Errorf("expected numbering, got %q", out)
	}
	if !strings.Contains(out, "open the URL") || !strings.Contains(out, "run status") {
		t.Errorf("expected list items, got %q", out)
	}
}

func TestStatusBadge(t *testing.T) {
	tests := []struct {
		status string
	}{
		{"CREATE_COMPLETE"},
		{"DELETE_COMPLETE"},
		{"ROLLBACK_COMPLETE"},
		{"CREATE_IN_PROGRESS"},
		{"REVIEW_IN_PROGRESS"},
		{"UNKNOWN_STATE"},
	}

	for _, tt := range tests {
		badge := StatusBadge(tt.status)
		if !strings.Contains(badge, tt.status) {
			t.Errorf("expected badge to contain %q, got %q", tt.status, badge)
		}
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{45 * time.Second, "45s"},
		{150 * time.Second, "2m 30s"},
		{90 * time.Minute, "1h 30m"},
	}

	for _, tt := range tests {
		if got := Duration(tt.d); got != tt.expected {
			t.Errorf("Duration(%v) = %q, want %q", tt.d, got, tt.expected)
		}
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"yes", "yes\n", true},
		{"y", "y\n", true},
		{"uppercase YES", "YES\n", true},
		{"mixed case Y", "Y\n", true},
		{"no", "no\n", false},
		{"n", "n\n", false},
		{"empty line", "\n", false},
		{"arbitrary text", "sure\n", false},
		{"eof without input", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldStdin := Stdin
			defer func() { Stdin = oldStdin }()
			Stdin = strings.NewReader(tt.input)

			out := captureStdout(t, func() {
				if got := Confirm("Destroy these stacks?"); got != tt.expected {
					t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.expected)
				}
			})

			if !strings.Contains(out, "Destroy these stacks?") {
				t.Errorf("expected prompt in output, got %q", out)
			}
		})
	}
}

func TestConfirmAcceptsInputWithoutTrailingNewline(t *testing.T) {
	oldStdin := Stdin
	defer func() { Stdin = oldStdin }()
	Stdin = strings.NewReader("yes")

	_ = captureStdout(t, func() {
		if !Confirm("Proceed?") {
			t.Error("expected Confirm to accept input without trailing newline")
		}
	})
}
