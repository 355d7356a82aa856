// Package corelog provides the registry's per-component structured logger.
// It mirrors coredhcp's logger.GetLogger(name) call-site shape: every
// package asks for its own *logrus.Entry by component name instead of
// reaching for the global logrus logger directly.
package corelog

import "github.com/sirupsen/logrus"

// Entry is the handle every component logs through.
type Entry = logrus.Entry

var base = logrus.New()

// SetLevel adjusts the base logger's level for every component logger.
func SetLevel(level logrus.Level) {
	base.SetLevel(level)
}

// Get returns the logger for component, tagged with a "component" field.
func Get(component string) *Entry {
	return base.WithField("component", component)
}
