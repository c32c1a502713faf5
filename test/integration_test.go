// ABOUTME: Integration tests for myjot CLI.
// ABOUTME: Tests full workflow from CLI commands against a built binary.
package test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

const routineDraft = `log_name: Leg day
body_weight: 180
weight_unit: lbs
exercises:
  - name: Squat
    category: Strength Training
    sets:
      - {reps: 5, weight: 225, weight_unit: lbs}
      - {reps: 5, weight: 245, weight_unit: lbs}
`

func TestFullWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}

	// Build the binary
	projectRoot, _ := filepath.Abs("..")
	tmpDir := t.TempDir()
	binary := filepath.Join(tmpDir, "myjot")

	buildCmd := exec.Command("go", "build", "-o", binary, "./cmd/myjot")
	buildCmd.Dir = projectRoot
	if output, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build: %v\n%s", err, output)
	}

	dataDir := filepath.Join(tmpDir, "data")
	run := func(args ...string) (string, error) {
		fullArgs := append([]string{"--data-dir", dataDir}, args...)
		cmd := exec.Command(binary, fullArgs...)
		cmd.Env = append(os.Environ(), "XDG_CONFIG_HOME="+filepath.Join(tmpDir, "config"), "NO_COLOR=1")
		output, err := cmd.CombinedOutput()
		return string(output), err
	}

	draftPath := filepath.Join(tmpDir, "legs.yaml")
	if err := os.WriteFile(draftPath, []byte(routineDraft), 0600); err != nil {
		t.Fatalf("Failed to write draft: %v", err)
	}

	// Save a routine
	output, err := run("workout", "add", "-f", draftPath, "--routine")
	if err != nil {
		t.Fatalf("Failed to add routine: %v\n%s", err, output)
	}
	if !strings.Contains(output, `Saved routine "Leg day"`) {
		t.Errorf("Expected saved routine in output, got: %s", output)
	}

	// Log a workout from it
	output, err = run("workout", "from-routine", "1", "--at", "2025-03-12 06:00")
	if err != nil {
		t.Fatalf("Failed to log from routine: %v\n%s", err, output)
	}

	// Test workout list
	output, err = run("workout", "list")
	if err != nil {
		t.Fatalf("Failed to list workouts: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Leg day") || !strings.Contains(output, "2 sets") {
		t.Errorf("Expected 'Leg day' with 2 sets in workout list, got: %s", output)
	}

	// Test show
	output, err = run("workout", "show", "1")
	if err != nil {
		t.Fatalf("Failed to show workout: %v\n%s", err, output)
	}
	if !strings.Contains(output, "5 x 245 lbs") {
		t.Errorf("Expected set summary in show output, got: %s", output)
	}

	// Test meal add with a validation failure
	output, err = run("meal", "add", "--name", "Lunch", "--meal", "Burrito")
	if err == nil {
		t.Fatalf("Expected meal without type to fail, got: %s", output)
	}
	if !strings.Contains(output, "A valid meal type is required.") {
		t.Errorf("Expected meal type message, got: %s", output)
	}

	// Round trip through a save file
	saveFile := filepath.Join(tmpDir, "journal.txt")
	if output, err = run("export", "savefile", "-o", saveFile); err != nil {
		t.Fatalf("Failed to export: %v\n%s", err, output)
	}
	output, err = run("import", saveFile)
	if err != nil {
		t.Fatalf("Failed to import: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Workouts: 1") || !strings.Contains(output, "Routines: 1") {
		t.Errorf("Expected import counts, got: %s", output)
	}
}
