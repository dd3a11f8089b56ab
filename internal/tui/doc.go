// Package tui renders run progress on a terminal with bubbletea.
package tui
