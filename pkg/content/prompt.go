// Glimmer
// Copyright (c) 2026 The Glimmer Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Glimmer.
//
// Glimmer is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Glimmer is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Glimmer.  If not, see <http://www.gnu.org/licenses/>.

package content

import (
	"errors"
	"fmt"
	"strings"
	"text/template"
)

// ErrTemplate marks prompt template problems. These are operator mistakes
// and are returned to the caller instead of falling back.
var ErrTemplate = errors.New("prompt template error")

// Prompt variables available to the template as {{.name}}. city and
// weather describe the primary location; cities maps every location name to
// its weather summary ({{index .cities "lyon"}}); date maps a language code
// to a LocalDate ({{.date.fr.Day}}).
const (
	VarTime    = "time"
	VarHour    = "hour"
	VarDate    = "date"
	VarCity    = "city"
	VarWeather = "weather"
	VarCities  = "cities"
	VarNews    = "news"
)

// Prompt is a parsed prompt template. Referencing a variable that is not
// supplied fails rendering instead of producing "<no value>".
type Prompt struct {
	tmpl *template.Template
}

func ParsePrompt(text string) (*Prompt, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: template is empty", ErrTemplate)
	}
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplate, err)
	}
	return &Prompt{tmpl: tmpl}, nil
}

func (p *Prompt) Render(vars map[string]any) (string, error) {
	var sb strings.Builder
	if err := p.tmpl.Execute(&sb, vars); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTemplate, err)
	}
	return sb.String(), nil
}
