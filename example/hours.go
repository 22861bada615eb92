package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/sitegear/sitegear"
)

// hours shows the opening hours configured under modules.hours.days,
// keyed by lower-case weekday:
//
//	modules:
//	  hours:
//	    days: {monday: "8:00-18:00", sunday: closed}
type hours struct {
	now func() time.Time
}

func newHours() *hours { return &hours{now: time.Now} }

func (h *hours) Name() string { return "hours" }

func (h *hours) Routes(r sitegear.Router) {
	r.Page("/", "index", func(c sitegear.Context) error {
		days := c.Config().Map("modules.hours.days")
		week := make([]map[string]any, 0, 7)
		for d := time.Monday; ; d = (d + 1) % 7 {
			week = append(week, map[string]any{"day": d.String(), "hours": days[strings.ToLower(d.String())]})
			if d == time.Sunday {
				break
			}
		}
		c.View().Set("week", week)
		c.View().Set("title", "Opening hours")
		return nil
	})
}

// Component "today" prints today's hours.
func (h *hours) Component(c sitegear.Context, name string, _ ...any) (sitegear.Component, error) {
	if name != "today" {
		return nil, fmt.Errorf("%w: hours/%s", sitegear.ErrUnknownComponent, name)
	}
	day := strings.ToLower(h.now().Weekday().String())
	today := c.Config().String("modules.hours.days."+day, "closed")
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<span class="hours-today">Today: `+templ.EscapeString(today)+`</span>`)
		return err
	}), nil
}
