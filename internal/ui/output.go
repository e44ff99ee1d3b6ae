// Package ui renders colored terminal output for the cashflow CLI.
package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

const headerWidth = 60

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	stepColor    = color.New(color.FgBlue)
	successColor = color.New(color.FgGreen)
	infoColor    = color.New(color.FgWhite)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
)

// Header prints a centered section header between rule lines.
func Header(text string) {
	line := strings.Repeat("=", headerWidth)
	headerColor.Println(line)
	headerColor.Println(center(text, headerWidth))
	headerColor.Println(line)
}

// Step prints a numbered progress step.
func Step(current, total int, text string) {
	stepColor.Printf("[%d/%d] %s\n", current, total, text)
}

// Success prints a success message.
func Success(format string, args ...interface{}) {
	successColor.Printf("✓ "+format+"\n", args...)
}

// Info prints a neutral message.
func Info(format string, args ...interface{}) {
	infoColor.Printf("  "+format+"\n", args...)
}

// Warning prints a warning message.
func Warning(format string, args ...interface{}) {
	warnColor.Printf("! "+format+"\n", args...)
}

// Error prints an error message.
func Error(format string, args ...interface{}) {
	errorColor.Printf("✗ "+format+"\n", args...)
}

// BlueText returns the text colored blue.
func BlueText(text string) string {
	return stepColor.Sprint(text)
}

// YellowText returns the text colored yellow.
func YellowText(text string) string {
	return warnColor.Sprint(text)
}

// center left-pads text so it sits in the middle of width. Text wider than
// width is returned unchanged.
func center(text string, width int) string {
	if len(text) >= width {
		return text
	}
	padding := (width - len(text)) / 2
	return fmt.Sprintf("%s%s", strings.Repeat(" ", padding), text)
}
