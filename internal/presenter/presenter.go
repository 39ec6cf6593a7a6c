// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/nathan-osman/go-sunrise"
	"github.com/vorlif/humanize"
	"github.com/vorlif/humanize/locale/fa"
	"github.com/vorlif/spreak"

	"github.com/pirayeshfar/location-finder/internal/config"
	"github.com/pirayeshfar/location-finder/internal/geocode"
	"github.com/pirayeshfar/location-finder/internal/locate"
	"github.com/pirayeshfar/location-finder/internal/resolution"
	"github.com/pirayeshfar/location-finder/internal/vartype"
)

// MapURLFormat is the map viewer URL, the placeholders take the latitude and longitude.
const MapURLFormat = "https://www.google.com/maps?q=%s,%s"

// Line is a labeled line of the address card.
type Line struct {
	Label string
	Value string
	Known bool
}

// TemplateContext is the data the output templates are rendered with.
type TemplateContext struct {
	Status  string
	Cycle   string
	Message string
	Kind    string

	HasCoordinates bool
	Latitude       float64
	Longitude      float64
	Accuracy       string
	MapURL         string

	FullAddress string
	Address     geocode.Address
	Lines       []Line
	CacheHit    bool

	StartedAt   time.Time
	UpdateTime  time.Time
	Took        time.Duration
	SunriseTime time.Time
	SunsetTime  time.Time
	IsDaytime   bool
}

// Output is a single waybar compatible output line.
type Output struct {
	Text    string `json:"text"`
	Tooltip string `json:"tooltip"`
	Class   string `json:"class"`
}

type Presenter struct {
	TextTemplate    *template.Template
	TooltipTemplate *template.Template

	localizer *spreak.Localizer
	humanizer *humanize.Humanizer
}

// New parses the configured output templates. The templates are test rendered once so that
// references to unknown fields are reported at startup.
func New(conf *config.Config, loc *spreak.Localizer) (*Presenter, error) {
	collection, err := humanize.New(humanize.WithLocale(fa.New()))
	if err != nil {
		return nil, fmt.Errorf("failed to create humanizer: %w", err)
	}
	pres := &Presenter{
		localizer: loc,
		humanizer: collection.CreateHumanizer(loc.Language()),
	}

	tpl, err := template.New("text").Funcs(pres.templateFuncMap()).Parse(conf.Output.Templates.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse text template: %w", err)
	}
	pres.TextTemplate = tpl

	tpl, err = template.New("tooltip").Funcs(pres.templateFuncMap()).Parse(conf.Output.Templates.Tooltip)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tooltip template: %w", err)
	}
	pres.TooltipTemplate = tpl

	if _, err = pres.Render(pres.BuildContext(resolution.Idle{}, time.Now())); err != nil {
		return nil, err
	}
	return pres, nil
}

// BuildContext flattens a state into a TemplateContext. Fields the state does not carry keep their
// zero values.
func (p *Presenter) BuildContext(state resolution.State, now time.Time) TemplateContext {
	ctx := TemplateContext{
		Status:     state.Status().String(),
		Cycle:      state.Cycle(),
		Message:    p.Message(state),
		UpdateTime: now,
		Took:       resolution.Duration(state),
	}

	switch st := state.(type) {
	case resolution.AcquiringCoordinates:
		ctx.StartedAt = st.StartedAt
	case resolution.ResolvingAddress:
		ctx.StartedAt = st.StartedAt
		p.fillCoordinates(&ctx, st.Coordinates, now)
	case resolution.Resolved:
		ctx.StartedAt = st.StartedAt
		ctx.UpdateTime = st.ResolvedAt
		p.fillCoordinates(&ctx, st.Coordinates, st.ResolvedAt)
		ctx.FullAddress = st.Address.FullAddress
		ctx.Address = st.Address
		ctx.CacheHit = st.CacheHit
		ctx.Lines = p.addressLines(st.Address)
	case resolution.Failed:
		ctx.StartedAt = st.StartedAt
		ctx.UpdateTime = st.FailedAt
		ctx.Kind = st.Kind.String()
	}
	return ctx
}

// Message returns the localized status text of a state. Failed states carry the message of their
// error kind.
func (p *Presenter) Message(state resolution.State) string {
	if failed, ok := state.(resolution.Failed); ok {
		return p.localizer.Get(failed.Message)
	}
	return p.localizer.Get(statusMessages[state.Status()])
}

// Render executes the text and tooltip templates. The output class is the state name.
func (p *Presenter) Render(ctx TemplateContext) (Output, error) {
	textBuf := bytes.NewBuffer(nil)
	if err := p.TextTemplate.Execute(textBuf, ctx); err != nil {
		return Output{}, fmt.Errorf("failed to render text template: %w", err)
	}
	tooltipBuf := bytes.NewBuffer(nil)
	if err := p.TooltipTemplate.Execute(tooltipBuf, ctx); err != nil {
		return Output{}, fmt.Errorf("failed to render tooltip template: %w", err)
	}

	return Output{
		Text:    strings.TrimSpace(textBuf.String()),
		Tooltip: strings.TrimSpace(tooltipBuf.String()),
		Class:   ctx.Status,
	}, nil
}

// Card renders the plain text address card. Labels are padded to a common display width.
func (p *Presenter) Card(ctx TemplateContext) string {
	if ctx.Status != resolution.StatusResolved.String() {
		return ctx.Message + "\n"
	}

	lines := make([]Line, 0, len(ctx.Lines)+4)
	lines = append(lines, Line{Label: p.loc("fulladdress"), Value: ctx.FullAddress, Known: true})
	lines = append(lines, ctx.Lines...)
	lines = append(lines,
		Line{Label: p.loc("coordinates"), Value: coords(ctx.Latitude, ctx.Longitude), Known: true},
		Line{Label: p.loc("accuracy"), Value: ctx.Accuracy, Known: true},
		Line{Label: p.loc("map"), Value: ctx.MapURL, Known: true},
	)

	width := 0
	for _, line := range lines {
		width = max(width, runewidth.StringWidth(line.Label))
	}
	buf := strings.Builder{}
	for _, line := range lines {
		buf.WriteString(runewidth.FillRight(line.Label, width))
		buf.WriteString("  ")
		buf.WriteString(line.Value)
		buf.WriteString("\n")
	}
	return buf.String()
}

// ClipboardText returns the text handed to the clipboard for a resolved address.
func (p *Presenter) ClipboardText(addr geocode.Address) string {
	return fmt.Sprintf("%s: %s\n%s: %s", p.loc("address"), addr.FullAddress, p.loc("postcode"),
		p.value(addr.Postcode))
}

// MapURL returns the map viewer URL for the coordinates.
func MapURL(coords locate.Coordinates) string {
	return fmt.Sprintf(MapURLFormat, locate.FormatDegrees(coords.Lat), locate.FormatDegrees(coords.Lon))
}

func (p *Presenter) fillCoordinates(ctx *TemplateContext, coords locate.Coordinates, at time.Time) {
	ctx.HasCoordinates = true
	ctx.Latitude = coords.Lat
	ctx.Longitude = coords.Lon
	ctx.MapURL = MapURL(coords)
	ctx.Accuracy = p.loc("unknown")
	if coords.Acc.IsSet() {
		ctx.Accuracy = fmt.Sprintf("%s m", locate.FormatDegrees(coords.Acc.Value()))
	}

	rise, set := sunrise.SunriseSunset(coords.Lat, coords.Lon, at.Year(), at.Month(), at.Day())
	ctx.SunriseTime = rise.In(at.Location())
	ctx.SunsetTime = set.In(at.Location())
	ctx.IsDaytime = at.After(rise) && at.Before(set)
}

func (p *Presenter) addressLines(addr geocode.Address) []Line {
	fields := addr.Fields()
	lines := make([]Line, 0, len(fields))
	for _, field := range fields {
		lines = append(lines, Line{
			Label: p.localizer.Get(field.Field.String()),
			Value: p.value(field.Value),
			Known: geocode.Known(field.Value),
		})
	}
	return lines
}

// value returns the field value, or the localized placeholder for an absent or blank field.
func (p *Presenter) value(val vartype.VarString) string {
	if !geocode.Known(val) {
		return p.loc("unknown")
	}
	return val.Value()
}
