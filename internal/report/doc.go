// Package report renders an analysis report as plain text for the console.
package report
