package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"bookshare/internal/auth"
	"bookshare/internal/book"
	"bookshare/internal/httpx"
	"bookshare/internal/isbn"
)

type fixture struct {
	Members []member `yaml:"members"`
}

type member struct {
	Email    string      `yaml:"email"`
	Password string      `yaml:"password"`
	Username string      `yaml:"username"`
	FullName string      `yaml:"full_name"`
	Books    []bookEntry `yaml:"books"`
}

type bookEntry struct {
	ISBN      string `yaml:"isbn"`
	AgeRange  string `yaml:"age_range"`
	Condition string `yaml:"condition"`
}

func loadFixture(path string) (fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	return parseFixture(raw)
}

func parseFixture(raw []byte) (fixture, error) {
	var f fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	for i, m := range f.Members {
		if details := httpx.ValidateStruct(m.registerCommand()); len(details) > 0 {
			return fixture{}, fmt.Errorf("member %d (%s): %s %s", i, m.Email, details[0].Field, details[0].Message)
		}
	}
	return f, nil
}

func (m member) registerCommand() auth.RegisterCommand {
	return auth.RegisterCommand{
		Email:    strings.TrimSpace(m.Email),
		Password: m.Password,
		Username: strings.TrimSpace(m.Username),
		FullName: strings.TrimSpace(m.FullName),
	}
}

// listable splits a member's books into add commands and the identifiers that
// fail validation.
func (m member) listable() (cmds []book.AddCommand, skipped []string) {
	for _, b := range m.Books {
		if !isbn.IsValid(b.ISBN) {
			skipped = append(skipped, b.ISBN)
			continue
		}
		cmds = append(cmds, book.AddCommand{ISBN: b.ISBN, AgeRange: b.AgeRange, Condition: b.Condition})
	}
	return cmds, skipped
}
