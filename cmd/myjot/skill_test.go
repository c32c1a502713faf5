// ABOUTME: Tests for the install-skill command.
// ABOUTME: Validates skill installation, confirmation, and embedded content.

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSkillFSReadEmbeddedContent(t *testing.T) {
	content, err := skillFS.ReadFile("skill/SKILL.md")
	if err != nil {
		t.Fatalf("Failed to read embedded skill/SKILL.md: %v", err)
	}

	contentStr := string(content)
	if !strings.HasPrefix(contentStr, "---") {
		t.Error("Expected SKILL.md to start with YAML frontmatter (---)")
	}

	for _, marker := range []string{
		"name: myjot",
		"description:",
		"myjot workout add",
		"myjot workout from-routine",
		"myjot meal add",
		"myjot export savefile",
	} {
		if !strings.Contains(contentStr, marker) {
			t.Errorf("Expected SKILL.md to contain %q", marker)
		}
	}
}

func TestInstallSkillWritesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	skillSkipConfirm = true
	t.Cleanup(func() { skillSkipConfirm = false })

	if err := installSkill(strings.NewReader("")); err != nil {
		t.Fatalf("installSkill failed: %v", err)
	}

	written, err := os.ReadFile(filepath.Join(home, ".claude", "skills", "myjot", "SKILL.md"))
	if err != nil {
		t.Fatalf("Skill file not created: %v", err)
	}
	if !strings.Contains(string(written), "name: myjot") {
		t.Error("Expected installed skill to contain 'name: myjot'")
	}
}

func TestInstallSkillOverwritesExistingFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	skillDir := filepath.Join(home, ".claude", "skills", "myjot")
	skillPath := filepath.Join(skillDir, "SKILL.md")

	if err := os.MkdirAll(skillDir, 0750); err != nil {
		t.Fatalf("Failed to create skill directory: %v", err)
	}
	if err := os.WriteFile(skillPath, []byte("stale content"), 0600); err != nil {
		t.Fatalf("Failed to write old skill file: %v", err)
	}

	if err := installSkill(strings.NewReader("y\n")); err != nil {
		t.Fatalf("installSkill failed: %v", err)
	}

	newData, err := os.ReadFile(skillPath)
	if err != nil {
		t.Fatalf("Failed to read new skill file: %v", err)
	}
	if strings.Contains(string(newData), "stale content") {
		t.Error("Old content should have been replaced")
	}
}

func TestInstallSkillDeclined(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if err := installSkill(strings.NewReader("n\n")); err != nil {
		t.Fatalf("installSkill failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".claude")); !os.IsNotExist(err) {
		t.Error("Declining should not create the skill directory")
	}
}

func TestParseSkillFrontmatter(t *testing.T) {
	content, err := skillFS.ReadFile("skill/SKILL.md")
	if err != nil {
		t.Fatalf("Failed to read embedded skill: %v", err)
	}
	fm, err := parseSkillFrontmatter(content)
	if err != nil {
		t.Fatalf("parseSkillFrontmatter failed: %v", err)
	}
	if fm.Name != "myjot" {
		t.Errorf("Name = %q, want %q", fm.Name, "myjot")
	}
	if !strings.Contains(fm.Description, "workout") {
		t.Errorf("Description = %q, want it to mention workouts", fm.Description)
	}

	if _, err := parseSkillFrontmatter([]byte("# no frontmatter")); err == nil {
		t.Error("Expected an error for a file without frontmatter")
	}
	if _, err := parseSkillFrontmatter([]byte("---\nname: x\n")); err == nil {
		t.Error("Expected an error for unclosed frontmatter")
	}
}

func TestInstallSkillUpToDateSkipsPrompt(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	skillSkipConfirm = true
	if err := installSkill(strings.NewReader("")); err != nil {
		t.Fatalf("first install failed: %v", err)
	}
	skillSkipConfirm = false

	// "n" would decline; an identical copy is left alone before any prompt.
	if err := installSkill(strings.NewReader("n\n")); err != nil {
		t.Fatalf("second install failed: %v", err)
	}
	written, err := os.ReadFile(filepath.Join(home, ".claude", "skills", "myjot", "SKILL.md"))
	if err != nil {
		t.Fatalf("Skill file missing after reinstall: %v", err)
	}
	embedded, _ := skillFS.ReadFile("skill/SKILL.md")
	if string(written) != string(embedded) {
		t.Error("Installed skill should match the embedded one")
	}
}

func TestSkillSkipConfirmFlag(t *testing.T) {
	flag := installSkillCmd.Flags().Lookup("yes")
	if flag == nil {
		t.Fatal("Expected --yes flag to be defined")
	}
	if flag.Shorthand != "y" {
		t.Errorf("Expected shorthand 'y', got %q", flag.Shorthand)
	}
	if flag.DefValue != "false" {
		t.Errorf("Expected default value 'false', got %q", flag.DefValue)
	}
}
