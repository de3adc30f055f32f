package scheduler

import (
	"strings"
	"time"
)

const rescheduledLayout = "02 Jan 2006 - 15:04"

// Advisory carries informational messages about a submitted request.
type Advisory struct {
	Messages []string `json:"messages"`
}

// String joins the messages one per line.
func (a Advisory) String() string {
	return strings.Join(a.Messages, "\n")
}

func advise(req Request, metered bool, now time.Time) Advisory {
	adv := Advisory{Messages: []string{}}
	if req.Network == NetworkUnmetered && metered {
		adv.Messages = append(adv.Messages, "Metered networks are not allowed, downloads will start on an unmetered network")
	}
	if req.Delay > 0 {
		at := now.Add(req.Delay).Local()
		adv.Messages = append(adv.Messages, "Download rescheduled to "+at.Format(rescheduledLayout))
	}
	return adv
}
