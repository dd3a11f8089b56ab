// Package update checks GitHub for newer treehash releases and installs them.
package update
