// Package provider defines the AI provider interface and implementations.
package provider

import "github.com/ZaguanLabs/polyglot"

// Provider is the interface for AI translation backends.
// This is an alias to the main package interface for convenience.
type Provider = polyglot.Provider

// LanguageDetector is an alias to the main package interface.
type LanguageDetector = polyglot.LanguageDetector

// TranslateRequest is an alias to the main package type.
type TranslateRequest = polyglot.TranslateRequest
