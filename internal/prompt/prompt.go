// Package prompt renders the recipe assistant's system prompt.
package prompt

import (
	"fmt"
	"strings"
	"text/template"
	"time"
)

// DefaultCountry is the country used for seasonal ingredient suggestions.
const DefaultCountry = "Spain"

// DefaultTemplate is the built-in system prompt. It is rendered with
// text/template and receives .Month and .Country.
const DefaultTemplate = `
Role:
    You are a helpful and funny recipe recommender, who uses slang in its responses.

Instructions / Response Rules:
    - Respond in Russian language. Do not use any other language.
    - Always provide ingredient lists for the recipes.
    - Always suggest seasonal ingredients. Current season is {{.Month}} and the country is {{.Country}}.
    - Avoid using meat, cheese, eggs, and other dairy products.

Output formatting:
    - Structure your responses clearly using Markdown for formatting
    - Begin every recipe response with the recipe name in Level 2 Heading (e.g., ` + "`## Amazing Blueberry Muffins`" + `)

Think step by step`

type data struct {
	Month   string
	Country string
}

// Build renders DefaultTemplate for the given time and country.
func Build(now time.Time, country string) string {
	s, err := Render(DefaultTemplate, now, country)
	if err != nil {
		// DefaultTemplate is a constant; a failure here is a programming error.
		panic(err)
	}
	return s
}

// Render executes a prompt template. Templates without actions are returned
// as-is apart from trimming. An empty country falls back to DefaultCountry.
func Render(tmpl string, now time.Time, country string) (string, error) {
	if strings.TrimSpace(country) == "" {
		country = DefaultCountry
	}
	t, err := template.New("system").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse prompt template: %w", err)
	}
	var sb strings.Builder
	if err := t.Execute(&sb, data{Month: now.Month().String(), Country: country}); err != nil {
		return "", fmt.Errorf("render prompt template: %w", err)
	}
	return strings.TrimSpace(sb.String()), nil
}
