// ABOUTME: install-skill command: copies the embedded myjot skill into ~/.claude/skills.
// ABOUTME: Shows what the skill covers from its frontmatter and skips identical installs.

package main

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

//go:embed skill/SKILL.md
var skillFS embed.FS

var skillSkipConfirm bool

var installSkillCmd = &cobra.Command{
	Use:   "install-skill",
	Short: "Install the journal skill for Claude Code",
	Long: `Install the myjot skill into ~/.claude/skills/myjot/.

The skill teaches Claude Code how to write workout drafts, log from a
saved routine, record meals and move the journal through save files.
An existing copy is replaced; an identical one is left alone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return installSkill(os.Stdin)
	},
}

func init() {
	installSkillCmd.Flags().BoolVarP(&skillSkipConfirm, "yes", "y", false, "Install without asking")
	rootCmd.AddCommand(installSkillCmd)
}

type skillFrontmatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// parseSkillFrontmatter reads the YAML block between the leading "---" lines.
func parseSkillFrontmatter(content []byte) (skillFrontmatter, error) {
	var fm skillFrontmatter
	rest, ok := bytes.CutPrefix(content, []byte("---\n"))
	if !ok {
		return fm, fmt.Errorf("skill file has no frontmatter")
	}
	block, _, ok := bytes.Cut(rest, []byte("\n---"))
	if !ok {
		return fm, fmt.Errorf("skill frontmatter is not closed")
	}
	if err := yaml.Unmarshal(block, &fm); err != nil {
		return fm, fmt.Errorf("parse skill frontmatter: %w", err)
	}
	return fm, nil
}

func skillDestination() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".claude", "skills", "myjot", "SKILL.md"), nil
}

func confirmSkill(in io.Reader) (bool, error) {
	fmt.Print("Install it? [y/N] ")
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read answer: %w", err)
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

func installSkill(in io.Reader) error {
	content, err := skillFS.ReadFile("skill/SKILL.md")
	if err != nil {
		return fmt.Errorf("read embedded skill: %w", err)
	}
	fm, err := parseSkillFrontmatter(content)
	if err != nil {
		return err
	}
	dest, err := skillDestination()
	if err != nil {
		return err
	}

	existing, err := os.ReadFile(dest)
	switch {
	case err == nil && bytes.Equal(existing, content):
		color.Green("✓ The %s skill at %s is already up to date", fm.Name, dest)
		return nil
	case err != nil && !os.IsNotExist(err):
		return fmt.Errorf("read installed skill: %w", err)
	}

	fmt.Printf("Skill %q\n  %s\n\n", fm.Name, fm.Description)
	fmt.Println("Destination:", dest)
	if existing != nil {
		color.Yellow("An older copy is installed there and will be replaced.")
	}
	fmt.Println()

	if !skillSkipConfirm {
		ok, err := confirmSkill(in)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Nothing installed.")
			return nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0750); err != nil {
		return fmt.Errorf("create skill directory: %w", err)
	}
	if err := os.WriteFile(dest, content, 0600); err != nil {
		return fmt.Errorf("write skill: %w", err)
	}

	color.Green("✓ Installed the %s skill", fm.Name)
	fmt.Println(`Try asking Claude: "Log today's pull day" or "Start my leg routine"`)
	return nil
}
