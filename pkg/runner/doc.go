// Package runner provides a plain-text questionnaire loop over a diastole
// session. It reads answers line by line, so the same loop serves an
// interactive terminal and a scripted run (`diastole run --answers`).
package runner
