// Package domain holds the types of the POST /v1/chat route.
//
// The chat is a keyword responder: it reads the question, picks a topic
// (dining, trend, category, luxury, or general) and answers from the loaded
// ledger with an optional chart descriptor the presentation layer can draw.
// There is no language model behind it.
package domain

import (
	maindomain "github.com/boddenberg/spending-insights-go/internal/domain"
)

// Intents recognised by the keyword router.
const (
	IntentDining   = "dining"
	IntentTrend    = "trend"
	IntentCategory = "category"
	IntentLuxury   = "luxury"
	IntentGeneral  = "general"
)

// Chart types understood by the presentation layer.
const (
	ChartBar  = "bar"
	ChartLine = "line"
	ChartPie  = "pie"
)

// ============================================================
// Request / Response
// ============================================================

// ChatRequest is the body of POST /v1/chat.
type ChatRequest struct {
	Query string `json:"query"`
}

// ChatResponse is the answer returned to the caller.
type ChatResponse struct {
	// ID identifies this message for the client's conversation list.
	ID        string       `json:"id"`
	Answer    string       `json:"answer"`
	Intent    string       `json:"intent"`
	Chart     *ChartConfig `json:"chart,omitempty"`
	Timestamp string       `json:"timestamp"`
}

// ChartConfig describes a chart that accompanies an answer.
type ChartConfig struct {
	Type        string       `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Data        []ChartPoint `json:"data"`
}

// ChartPoint is one labelled value of a chart.
type ChartPoint struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// ============================================================
// Strategy context
// ============================================================

// ChatContext carries everything a strategy needs to answer. It is built by
// the ChatService before delegating.
type ChatContext struct {
	Query          string
	DetectedIntent string

	// Current and Previous are the periods the answer talks about.
	Current  maindomain.Period
	Previous maindomain.Period
}
