package util

import (
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Progress logs a running count on the first record and every n records after
type Progress struct {
	log   zerolog.Logger
	msg   string
	count int
	gate  rate.Sometimes
}

// NewProgress creates a progress reporter that logs msg every n ticks
func NewProgress(log zerolog.Logger, msg string, every int) *Progress {
	if every <= 0 {
		every = 1000
	}
	return &Progress{
		log:  log,
		msg:  msg,
		gate: rate.Sometimes{Every: every},
	}
}

// Tick records one processed item
func (p *Progress) Tick() {
	p.count++
	p.gate.Do(func() {
		p.log.Info().Int("processed", p.count).Msg(p.msg)
	})
}
